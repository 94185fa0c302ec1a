package ast

// SQL AST nodes. Grounded on original_source/server/src/lang/ast/sql.rs's
// SqlSelect/SelectCore/SqlFrom/SqlProjection shape, extended with
// Insert/Update/Delete peers per the data model (spec.md §3). Every SQL
// expression embeds the host grammar via SqlExpr, so `$x + 1` is valid in
// a projection, a WHERE clause, or a VALUES list alike.

// SqlExpr wraps a host-language expression used inside a SQL clause.
// Kept as its own type (rather than a bare ExprId) so the SQL AST reads
// self-documenting and leaves room for a future non-Default variant
// (e.g. a literal sub-select) without changing every call site.
type SqlExpr struct {
	Expr ExprId
}

// SqlCompoundOperator tags a compound SELECT's set-operation tail.
type SqlCompoundOperator int

const (
	SqlUnion SqlCompoundOperator = iota
	SqlUnionAll
	SqlIntersect
	SqlExcept
)

// SqlOrdering tags one ORDER BY item's direction.
type SqlOrdering int

const (
	SqlAsc SqlOrdering = iota
	SqlDesc
)

// SqlJoinType tags a JOIN clause's kind.
type SqlJoinType int

const (
	SqlJoinInner SqlJoinType = iota
	SqlJoinLeft
	SqlJoinRight
)

// SqlProjection is one item of a SELECT's projection list.
type SqlProjection struct {
	// Star is true for a bare `*` projection.
	Star bool
	// TableStar, when non-empty, names the table of a `table.*` projection.
	TableStar string
	// Expr/Alias hold a `expr [AS alias]` projection; unused when Star or
	// TableStar is set.
	Expr  SqlExpr
	Alias string
}

// SqlTableRef is one FROM item: either a named table (optionally
// schema-qualified and aliased) or a parenthesized sub-select.
type SqlTableRef struct {
	Namespace string
	Table     string
	Alias     string
	Subquery  *SqlSelect
}

// SqlJoinClause is one JOIN attached to a FROM item.
type SqlJoinClause struct {
	Type  SqlJoinType
	Table SqlTableRef
	On    SqlExpr
}

// SqlSelectCore holds the clauses shared by every leg of a compound
// SELECT: distinct flag, projection list, from, where, group-by, having.
type SqlSelectCore struct {
	Distinct   bool
	Projection []SqlProjection
	From       *SqlTableRef
	Joins      []SqlJoinClause
	Where      *SqlExpr
	GroupBy    []SqlExpr
	Having     *SqlExpr
}

// SqlCompoundTerm is one `(UNION [ALL] | INTERSECT | EXCEPT) select-core`
// tail entry.
type SqlCompoundTerm struct {
	Op   SqlCompoundOperator
	Core SqlSelectCore
}

// SqlOrderItem is one `expr (ASC|DESC)` entry of an ORDER BY list.
type SqlOrderItem struct {
	Expr SqlExpr
	Dir  SqlOrdering
}

// SqlSelect is a full (possibly compound) SELECT statement.
type SqlSelect struct {
	Core     SqlSelectCore
	Compound []SqlCompoundTerm
	OrderBy  []SqlOrderItem
	Limit    *SqlExpr
	Offset   *SqlExpr
}

// SqlInsert is `INSERT INTO table [(cols...)] VALUES (exprs...)`.
type SqlInsert struct {
	Table   string
	Columns []string
	Values  []SqlExpr
}

// SqlSetClause is one `column = expr` entry of an UPDATE's SET list.
type SqlSetClause struct {
	Column string
	Value  SqlExpr
}

// SqlUpdate is `UPDATE table SET col = expr, ... [WHERE expr]`.
type SqlUpdate struct {
	Table string
	Sets  []SqlSetClause
	Where *SqlExpr
}

// SqlDelete is `DELETE FROM table [WHERE expr]`.
type SqlDelete struct {
	Table string
	Where *SqlExpr
}
