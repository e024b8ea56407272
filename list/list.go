package list

import (
	"go.uber.org/zap"

	"github.com/wippyai/linmem"
	"github.com/wippyai/linmem/errors"
	"github.com/wippyai/linmem/layout"
	"github.com/wippyai/linmem/view"
)

// Struct types shared by every list.
var (
	HeaderType = view.MustDefine("List",
		layout.F("head", layout.KindPointer),
		layout.F("len", layout.KindSizeT),
	)
	IntNodeType = view.MustDefine("IntNode",
		layout.F("next", layout.KindPointer),
		layout.F("value", layout.KindInt),
	)
	IntListListNodeType = view.MustDefine("IntListListNode",
		layout.F("next", layout.KindPointer),
		layout.F("value", layout.KindPointer),
	)
)

// element describes the node type of a list and how its value is accessed.
type element[T any] struct {
	node *view.Type
	get  func(v *view.View) (T, error)
	set  func(v *view.View, value T) error
}

var (
	intElement = &element[int32]{
		node: IntNodeType,
		get:  func(v *view.View) (int32, error) { return v.Int("value") },
		set:  func(v *view.View, x int32) error { return v.SetInt("value", x) },
	}
	listElement = &element[linmem.Pointer]{
		node: IntListListNodeType,
		get:  func(v *view.View) (linmem.Pointer, error) { return v.Pointer("value") },
		set:  func(v *view.View, x linmem.Pointer) error { return v.SetPointer("value", x) },
	}
)

// List is a singly linked list stored in linear memory.
type List[T any] struct {
	elem   *element[T]
	mem    linmem.Memory
	alloc  linmem.Allocator
	header *view.View
}

// IntList holds int values.
type IntList = List[int32]

// ListList holds pointers to IntList headers.
type ListList struct {
	List[linmem.Pointer]
}

// NewIntList allocates a zeroed list header from a.
func NewIntList(a linmem.Allocator) (*IntList, error) {
	inst, err := HeaderType.New(a)
	if err != nil {
		return nil, err
	}
	return bind(intElement, a.Memory(), a, inst.Ptr()), nil
}

// IntListAt binds an IntList to an existing header at ptr.
func IntListAt(mem linmem.Memory, a linmem.Allocator, ptr linmem.Pointer) *IntList {
	return bind(intElement, mem, a, ptr)
}

// NewListList allocates a zeroed list-of-lists header from a.
func NewListList(a linmem.Allocator) (*ListList, error) {
	inst, err := HeaderType.New(a)
	if err != nil {
		return nil, err
	}
	return &ListList{List: *bind(listElement, a.Memory(), a, inst.Ptr())}, nil
}

// ListListAt binds a ListList to an existing header at ptr.
func ListListAt(mem linmem.Memory, a linmem.Allocator, ptr linmem.Pointer) *ListList {
	return &ListList{List: *bind(listElement, mem, a, ptr)}
}

func bind[T any](e *element[T], mem linmem.Memory, a linmem.Allocator, ptr linmem.Pointer) *List[T] {
	return &List[T]{
		elem:   e,
		mem:    mem,
		alloc:  a,
		header: HeaderType.At(mem, ptr).View(),
	}
}

// Ptr returns the address of the list header.
func (l *List[T]) Ptr() linmem.Pointer {
	return l.header.Instance().Ptr()
}

// Len returns the stored length.
func (l *List[T]) Len() (uint32, error) {
	return l.header.SizeT("len")
}

// Head returns the first node, or nil for an empty list.
func (l *List[T]) Head() (*Node[T], error) {
	head, err := l.header.Pointer("head")
	if err != nil || head.IsNull() {
		return nil, err
	}
	return l.node(head), nil
}

// Iter returns a cursor positioned before the current head.
func (l *List[T]) Iter() *Cursor[T] {
	head, err := l.header.Pointer("head")
	return &Cursor[T]{list: l, next: head, err: err}
}

// Append links a new node holding value at the tail. If the allocator is
// exhausted the list is left unchanged and an OutOfMemory error is returned.
func (l *List[T]) Append(value T) error {
	head, err := l.header.Pointer("head")
	if err != nil {
		return err
	}
	n, err := l.Len()
	if err != nil {
		return err
	}

	tail := linmem.Null
	if !head.IsNull() {
		if tail, err = l.tail(head, n); err != nil {
			return err
		}
	}

	size := l.elem.node.Sizeof()
	ptr := l.alloc.Alloc(size)
	if ptr.IsNull() {
		Logger().Debug("list append out of memory",
			zap.Stringer("list", l.Ptr()),
			zap.Uint32("size", size))
		return errors.OutOfMemory(errors.PhaseList, size)
	}

	node := l.node(ptr)
	if err := node.view.SetPointer("next", linmem.Null); err != nil {
		return err
	}
	if err := l.elem.set(node.view, value); err != nil {
		return err
	}

	if tail.IsNull() {
		err = l.header.SetPointer("head", ptr)
	} else {
		err = l.node(tail).view.SetPointer("next", ptr)
	}
	if err != nil {
		return err
	}
	return l.header.SetSizeT("len", n+1)
}

// tail follows next links from head and returns the last node.
func (l *List[T]) tail(head linmem.Pointer, n uint32) (linmem.Pointer, error) {
	cur := head
	for hops := uint64(0); ; hops++ {
		if hops > uint64(n)+1 {
			return linmem.Null, l.corrupt("next links do not terminate")
		}
		next, err := l.node(cur).view.Pointer("next")
		if err != nil {
			return linmem.Null, err
		}
		if next.IsNull() {
			return cur, nil
		}
		cur = next
	}
}

// Get returns the node at index.
func (l *List[T]) Get(index uint32) (*Node[T], error) {
	n, err := l.Len()
	if err != nil {
		return nil, err
	}
	if index >= n {
		return nil, errors.OutOfBounds(errors.PhaseList, []string{HeaderType.Name()}, int(index), int(n))
	}
	node, err := l.Head()
	for i := uint32(0); err == nil && node != nil && i < index; i++ {
		node, err = node.Next()
	}
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, l.corrupt("list ends before its stored length")
	}
	return node, nil
}

// Values returns every value in list order.
func (l *List[T]) Values() ([]T, error) {
	n, err := l.Len()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, n)
	c := l.Iter()
	for c.Next() {
		if uint64(len(out)) > uint64(n) {
			return nil, l.corrupt("next links do not terminate")
		}
		v, err := c.Node().Value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (l *List[T]) node(ptr linmem.Pointer) *Node[T] {
	return &Node[T]{list: l, view: l.elem.node.At(l.mem, ptr).View()}
}

func (l *List[T]) corrupt(detail string) error {
	return errors.InvalidData(errors.PhaseList, []string{HeaderType.Name()}, detail)
}

// AppendList appends the header of inner.
func (l *ListList) AppendList(inner *IntList) error {
	return l.Append(inner.Ptr())
}

// Lists returns the inner lists in order.
func (l *ListList) Lists() ([]*IntList, error) {
	ptrs, err := l.Values()
	if err != nil {
		return nil, err
	}
	out := make([]*IntList, len(ptrs))
	for i, p := range ptrs {
		if p.IsNull() {
			return nil, errors.InvalidData(errors.PhaseList,
				[]string{IntListListNodeType.Name(), "value"}, "null inner list")
		}
		out[i] = IntListAt(l.mem, l.alloc, p)
	}
	return out, nil
}
