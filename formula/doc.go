// Package formula implements formulas over columns: arithmetic
// expressions with column names and get(path) lookups, like
// "P3.Py - 50" or "get('evt/P3/P3.Py') * 2".
package formula
