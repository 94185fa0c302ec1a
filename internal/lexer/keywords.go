package lexer

// Two static tables, per the spec: a case-sensitive table for script
// keywords and a case-insensitive table for SQL keywords (looked up
// against the upper-cased lexeme). Grounded on internal/engine/lexer.go's
// isKeyword in the teacher repo, narrowed to this language's actual
// reserved words.

var scriptKeywords = map[string]bool{
	"var": true, "if": true, "else": true,
	"for": true, "while": true, "loop": true,
	"fun": true, "break": true, "continue": true, "return": true,
	"and": true, "or": true,
}

func isScriptKeyword(lexeme string) bool {
	return scriptKeywords[lexeme]
}

var sqlKeywords = map[string]bool{
	"SELECT": true, "DISTINCT": true, "ALL": true, "FROM": true, "WHERE": true,
	"GROUP": true, "BY": true, "HAVING": true,
	"ORDER": true, "ASC": true, "DESC": true, "LIMIT": true, "OFFSET": true,
	"JOIN": true, "LEFT": true, "RIGHT": true, "OUTER": true, "INNER": true, "ON": true, "AS": true,
	"UNION": true, "INTERSECT": true, "EXCEPT": true,
	"INSERT": true, "INTO": true, "VALUES": true,
	"UPDATE": true, "SET": true, "DELETE": true,
}

func isSQLKeyword(upper string) bool {
	return sqlKeywords[upper]
}
