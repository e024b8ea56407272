package list

import (
	"github.com/wippyai/linmem"
	"github.com/wippyai/linmem/view"
)

// Node is a live view of one list node.
type Node[T any] struct {
	list *List[T]
	view *view.View
}

// Ptr returns the node address.
func (n *Node[T]) Ptr() linmem.Pointer {
	return n.view.Instance().Ptr()
}

// View exposes the raw next and value fields.
func (n *Node[T]) View() *view.View {
	return n.view
}

// Value reads the node's value.
func (n *Node[T]) Value() (T, error) {
	return n.list.elem.get(n.view)
}

// SetValue overwrites the node's value in place.
func (n *Node[T]) SetValue(value T) error {
	return n.list.elem.set(n.view, value)
}

// Next returns the following node, or nil at the end of the list.
func (n *Node[T]) Next() (*Node[T], error) {
	next, err := n.view.Pointer("next")
	if err != nil || next.IsNull() {
		return nil, err
	}
	return n.list.node(next), nil
}

// Cursor walks a list from the head captured when it was created.
//
//	c := l.Iter()
//	for c.Next() {
//		v, _ := c.Node().Value()
//	}
//	if err := c.Err(); err != nil { ... }
type Cursor[T any] struct {
	list *List[T]
	next linmem.Pointer
	cur  *Node[T]
	err  error
}

// Next advances to the next node. It returns false at the end of the list or
// on a read error.
func (c *Cursor[T]) Next() bool {
	if c.err != nil || c.next.IsNull() {
		c.cur = nil
		return false
	}
	node := c.list.node(c.next)
	next, err := node.view.Pointer("next")
	if err != nil {
		c.err = err
		c.cur = nil
		return false
	}
	c.cur = node
	c.next = next
	return true
}

// Node returns the current node.
func (c *Cursor[T]) Node() *Node[T] {
	return c.cur
}

// Err returns the first error met while walking.
func (c *Cursor[T]) Err() error {
	return c.err
}
