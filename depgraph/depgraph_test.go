package depgraph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brightscope/bsc/depgraph"
)

func TestChangedNotifiesDirectSubscriber(t *testing.T) {
	g := depgraph.New()
	var got []string
	g.Subscribe("a.brs", func(key string) { got = append(got, key) })
	g.Changed("a.brs")
	assert.Equal(t, []string{"a.brs"}, got)
}

func TestChangedPropagatesTransitively(t *testing.T) {
	g := depgraph.New()
	g.AddEdge("child.xml", "parent.xml")
	g.AddEdge("grandchild.xml", "child.xml")

	var notified []string
	g.Subscribe("parent.xml", func(k string) { notified = append(notified, "parent") })
	g.Subscribe("child.xml", func(k string) { notified = append(notified, "child") })
	g.Subscribe("grandchild.xml", func(k string) { notified = append(notified, "grandchild") })

	g.Changed("parent.xml")

	assert.ElementsMatch(t, []string{"parent", "child", "grandchild"}, notified)
}

func TestChangedIsCycleSafe(t *testing.T) {
	g := depgraph.New()
	g.AddEdge("a", "b")
	g.AddEdge("b", "a")

	count := 0
	g.Subscribe("a", func(string) { count++ })
	g.Subscribe("b", func(string) { count++ })

	g.Changed("a")
	assert.Equal(t, 2, count)
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	g := depgraph.New()
	count := 0
	h := g.Subscribe("a", func(string) { count++ })
	g.Changed("a")
	g.Unsubscribe(h)
	g.Changed("a")
	assert.Equal(t, 1, count)
}

func TestRemoveNodeDropsEdgesAndSubscribers(t *testing.T) {
	g := depgraph.New()
	g.AddEdge("child", "parent")
	count := 0
	g.Subscribe("child", func(string) { count++ })

	g.Changed("child")
	assert.Equal(t, 1, count)

	g.RemoveNode("parent")
	assert.False(t, g.DependsOn("child", "parent"))

	g.RemoveNode("child")
	g.Changed("child")
	assert.Equal(t, 1, count, "subscribers are dropped when their node is removed")
}
