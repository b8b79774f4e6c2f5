// Package column describes the fields of a grid's item type.
//
// A Column resolves its value kind once, at declaration time, and carries an
// accessor that extracts an ir.Value from an item. Filter and sort compilation
// dispatch on that kind; nothing downstream inspects the item type itself.
package column
