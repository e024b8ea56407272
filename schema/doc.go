// Package schema loads struct declarations from YAML or JSON files.
//
//	structs:
//	  - name: IntNode
//	    fields:
//	      - {name: next, kind: pointer}
//	      - {name: value, kind: int}
//
// Kind names are the C spellings accepted by layout.ParseKind. Struct order in
// the file is preserved.
package schema
