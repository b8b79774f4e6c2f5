// Package queryir is the backend-neutral form of a grid query.
//
// A remote data source receives an ir.QuerySpec: filter and sort specs plus a
// window. FromSpec lowers it into a small relational tree that SQL backends
// compile without knowing anything about grid operators:
//
//	[ir.QuerySpec] → [queryir.Select / queryir.Count] → [querysql]
//
// Lowering applies the same null and coercion rules as the in-memory filter
// compiler, so a store answers exactly what a local grid would show:
//
//   - a spec without operator or value lowers to Const{true}
//   - a value that cannot be read in the column's kind lowers to Const{false}
//     for positive operators and Const{true} for negated ones
//   - positive tests require a non-null field; negated tests accept null
//
// SEALED INTERFACES:
//
// Query and Predicate are sealed with marker methods, so backends can switch
// over them exhaustively:
//
//	switch p := pred.(type) {
//	case Compare:
//	case Match:
//	case IsNull:
//	case Not:
//	case And:
//	case Or:
//	case Const:
//	}
//
// ORDERING:
//
// Sort keys keep their priority order. Ascending keys place nulls first and
// descending keys place them last, matching the in-memory comparator. Every
// Select ends with the record id so paging is deterministic.
package queryir
