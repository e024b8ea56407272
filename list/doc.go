// Package list implements singly linked lists whose list header and nodes
// live in linear memory.
//
// A list header is {head pointer, len size_t}. Nodes are {next pointer,
// value} where value is an int (IntList) or a pointer to another list header
// (ListList). The layouts match what a C program compiled for a 32-bit target
// would use, so the same buffer can be shared with guest code:
//
//	typedef struct IntNode         { struct IntNode *next; int value; } IntNode;
//	typedef struct IntListListNode { struct IntListListNode *next; void *value; } IntListListNode;
//	typedef struct List            { void *head; size_t len; } List;
//
// Lists only grow: Append links a freshly allocated node at the tail. Nodes are
// never freed by this package.
//
// Lists are not safe for concurrent use. A Cursor observes the links it reads
// and must not be advanced while another caller appends to the same list.
package list
