package ir

import (
	"fmt"
	"regexp"
	"strings"
)

const identPattern = "(?:`(?:[^`]|``)+`|[A-Za-z0-9_$]+)"

var (
	createTableRegex  = regexp.MustCompile(`(?is)\bCREATE\s+(?:TEMPORARY\s+)?TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?(` + identPattern + `(?:\s*\.\s*` + identPattern + `)?)\s*\(`)
	createObjectRegex = regexp.MustCompile(`(?is)^CREATE\s+(?:OR\s+REPLACE\s+)?(?:ALGORITHM\s*=\s*\w+\s+)?(?:DEFINER\s*=\s*\S+\s+)?(?:SQL\s+SECURITY\s+\w+\s+)?(VIEW|PROCEDURE|FUNCTION|TRIGGER|EVENT)\s+(?:IF\s+NOT\s+EXISTS\s+)?(` + identPattern + `(?:\s*\.\s*` + identPattern + `)?)`)
	leadingIdentRegex = regexp.MustCompile(`^\s*(` + identPattern + `)`)

	indexRegex      = regexp.MustCompile(`(?is)^(?:CONSTRAINT(?:\s+(` + identPattern + `))?\s+)?(PRIMARY\s+KEY|UNIQUE(?:\s+(?:KEY|INDEX))?|FULLTEXT(?:\s+(?:KEY|INDEX))?|SPATIAL(?:\s+(?:KEY|INDEX))?|KEY|INDEX)\s*(` + identPattern + `)?\s*(?:USING\s+\w+\s*)?\(`)
	foreignKeyRegex = regexp.MustCompile(`(?is)^(?:CONSTRAINT(?:\s+(` + identPattern + `))?\s+)?FOREIGN\s+KEY\s*(` + identPattern + `)?\s*\(`)
	referencesRegex = regexp.MustCompile(`(?is)^\s*REFERENCES\s+(` + identPattern + `(?:\s*\.\s*` + identPattern + `)?)\s*\(`)
	checkRegex      = regexp.MustCompile(`(?is)^(?:CONSTRAINT(?:\s+` + identPattern + `)?\s+)?CHECK\s*\(`)
	usingRegex      = regexp.MustCompile(`(?i)\bUSING\s+(BTREE|HASH)\b`)
	onDeleteRegex   = regexp.MustCompile(`(?i)\bON\s+DELETE\s+(RESTRICT|CASCADE|SET\s+NULL|SET\s+DEFAULT|NO\s+ACTION)`)
	onUpdateRegex   = regexp.MustCompile(`(?i)\bON\s+UPDATE\s+(RESTRICT|CASCADE|SET\s+NULL|SET\s+DEFAULT|NO\s+ACTION)`)
	inlinePrimary   = regexp.MustCompile(`(?i)\s*\bPRIMARY\s+KEY\b`)
	inlineUnique    = regexp.MustCompile(`(?i)\s*\bUNIQUE(?:\s+KEY)?\b`)
	keyPartRegex    = regexp.MustCompile(`(?is)^(` + identPattern + `)\s*(\(\s*\d+\s*\))?\s*(ASC|DESC)?$`)

	engineRegex    = regexp.MustCompile(`(?i)\bENGINE\s*=?\s*(\w+)`)
	charsetRegex   = regexp.MustCompile(`(?i)\b(?:CHARSET|CHARACTER\s+SET)\s*=?\s*(\w+)`)
	collateRegex   = regexp.MustCompile(`(?i)\bCOLLATE\s*=?\s*(\w+)`)
	tableComment   = regexp.MustCompile(`(?is)\bCOMMENT\s*=?\s*'((?:[^'\\]|\\.|'')*)'`)
	autoIncrOption = regexp.MustCompile(`(?i)\s*\bAUTO_INCREMENT\s*=\s*\d+`)
)

// ParseTable parses the first CREATE TABLE statement found in ddl.
// It returns nil when ddl contains no CREATE TABLE. Use ParseTables for multi-table input.
func ParseTable(ddl string) *TableDefinition {
	loc := createTableRegex.FindStringSubmatchIndex(ddl)
	if loc == nil {
		return nil
	}
	open := loc[1] - 1
	closeIdx := matchingParen(ddl, open)
	if closeIdx < 0 {
		return nil
	}

	table := &TableDefinition{
		Name:        unqualify(ddl[loc[2]:loc[3]]),
		Columns:     []*ColumnDefinition{},
		Indexes:     []*IndexDefinition{},
		ForeignKeys: []*ForeignKeyDefinition{},
	}

	for _, item := range splitTopLevel(ddl[open+1:closeIdx], ',') {
		item = collapseUnquoted(stripComments(item))
		if item == "" {
			continue
		}
		table.parseItem(item)
	}

	rest := ddl[closeIdx+1:]
	if semi := strings.IndexByte(rest, ';'); semi >= 0 {
		rest = rest[:semi]
	}
	table.Options = parseTableOptions(rest, table.Options.Checks)

	end := closeIdx + 1 + len(rest)
	table.Definition = strings.TrimSpace(ddl[loc[0]:end])
	return table
}

// ParseTables parses every CREATE TABLE statement in ddl, in declaration order
func ParseTables(ddl string) []*TableDefinition {
	var tables []*TableDefinition
	for _, stmt := range SplitStatements(ddl) {
		if t := ParseTable(stmt); t != nil {
			tables = append(tables, t)
		}
	}
	return tables
}

// ParseSchema parses every table, view, procedure, function, trigger and event in ddl.
// Statements of any other kind are skipped.
func ParseSchema(ddl string) (*Schema, error) {
	schema := NewSchema()
	for _, stmt := range SplitStatements(ddl) {
		text := strings.TrimSpace(UnwrapVersionComments(stripLeadingComments(stmt)))
		if text == "" {
			continue
		}
		if loc := createTableRegex.FindStringIndex(text); loc != nil && loc[0] == 0 {
			table := ParseTable(text)
			if table == nil {
				continue
			}
			if err := schema.AddTable(table); err != nil {
				return nil, err
			}
			continue
		}
		m := createObjectRegex.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		obj := &ObjectDefinition{
			Type:       ObjectType(strings.ToUpper(m[1])),
			Name:       unqualify(m[2]),
			Definition: text,
		}
		if err := schema.AddObject(obj); err != nil {
			return nil, err
		}
	}
	return schema, nil
}

// StripAutoIncrement removes the AUTO_INCREMENT=N table option from a CREATE TABLE statement
func StripAutoIncrement(ddl string) string {
	return autoIncrOption.ReplaceAllString(ddl, "")
}

func (t *TableDefinition) parseItem(item string) {
	if checkRegex.MatchString(item) {
		t.Options.Checks = append(t.Options.Checks, item)
		return
	}
	if m := foreignKeyRegex.FindStringSubmatchIndex(item); m != nil {
		if fk := t.parseForeignKey(item, m); fk != nil {
			t.ForeignKeys = append(t.ForeignKeys, fk)
			return
		}
	}
	if m := indexRegex.FindStringSubmatchIndex(item); m != nil {
		t.parseIndex(item, m)
		return
	}

	m := leadingIdentRegex.FindStringSubmatchIndex(item)
	if m == nil {
		return
	}
	name := UnquoteIdentifier(item[m[2]:m[3]])
	definition := strings.TrimSpace(item[m[1]:])

	// Inline keys are stored the way SHOW CREATE TABLE prints them, as table-level keys
	definition, primary := removeUnquoted(definition, inlinePrimary)
	definition, unique := removeUnquoted(definition, inlineUnique)
	t.setColumn(name, definition)

	if primary {
		t.PrimaryKey = []string{name}
		t.PrimaryKeyDefinition = "PRIMARY KEY (" + QuoteIdentifier(name) + ")"
	}
	if unique && t.Index(name) == nil {
		t.Indexes = append(t.Indexes, &IndexDefinition{
			Name:       name,
			Columns:    []string{name},
			Kind:       IndexKindUnique,
			Definition: "UNIQUE KEY " + QuoteIdentifier(name) + " (" + QuoteIdentifier(name) + ")",
		})
	}
}

// removeUnquoted deletes the matches of re that are outside quoted literals and
// reports whether there were any
func removeUnquoted(s string, re *regexp.Regexp) (string, bool) {
	found := false
	s = mapUnquoted(s, func(part string) string {
		if !re.MatchString(part) {
			return part
		}
		found = true
		return re.ReplaceAllString(part, "")
	})
	return collapseUnquoted(s), found
}

func (t *TableDefinition) parseIndex(item string, m []int) {
	open := m[1] - 1
	closeIdx := matchingParen(item, open)
	if closeIdx < 0 {
		return
	}
	columns := parseKeyParts(item[open+1 : closeIdx])

	keyword := strings.ToUpper(item[m[4]:m[5]])
	method := ""
	if u := usingRegex.FindStringSubmatch(item); u != nil {
		method = strings.ToUpper(u[1])
	}

	if strings.HasPrefix(keyword, "PRIMARY") {
		t.PrimaryKey = columns
		t.PrimaryKeyDefinition = item
		return
	}

	var kind IndexKind
	switch {
	case strings.HasPrefix(keyword, "UNIQUE"):
		kind = IndexKindUnique
	case strings.HasPrefix(keyword, "FULLTEXT"):
		kind = IndexKindFulltext
	case strings.HasPrefix(keyword, "SPATIAL"):
		kind = IndexKindSpatial
	default:
		kind = IndexKindIndex
	}

	name := ""
	if m[6] >= 0 {
		name = UnquoteIdentifier(item[m[6]:m[7]])
	} else if m[2] >= 0 {
		name = UnquoteIdentifier(item[m[2]:m[3]])
	}
	if name == "" {
		name = t.generatedIndexName(columns)
	}

	idx := &IndexDefinition{
		Name:       name,
		Columns:    columns,
		Kind:       kind,
		Method:     method,
		Definition: item,
	}
	if existing := t.Index(name); existing != nil {
		*existing = *idx
		return
	}
	t.Indexes = append(t.Indexes, idx)
}

// generatedIndexName mimics MySQL: an unnamed index takes its first column's name,
// with _2, _3 ... appended on collision
func (t *TableDefinition) generatedIndexName(columns []string) string {
	base := "idx"
	if len(columns) > 0 {
		base = columns[0]
		if p := strings.IndexAny(base, "( "); p > 0 {
			base = base[:p]
		}
	}
	name := base
	for n := 2; t.Index(name) != nil; n++ {
		name = fmt.Sprintf("%s_%d", base, n)
	}
	return name
}

func (t *TableDefinition) parseForeignKey(item string, m []int) *ForeignKeyDefinition {
	open := m[1] - 1
	closeIdx := matchingParen(item, open)
	if closeIdx < 0 {
		return nil
	}
	rest := item[closeIdx+1:]
	r := referencesRegex.FindStringSubmatchIndex(rest)
	if r == nil {
		return nil
	}
	refOpen := r[1] - 1
	refClose := matchingParen(rest, refOpen)
	if refClose < 0 {
		return nil
	}

	fk := &ForeignKeyDefinition{
		Columns:    parseKeyParts(item[open+1 : closeIdx]),
		RefTable:   unqualify(rest[r[2]:r[3]]),
		RefColumns: parseKeyParts(rest[refOpen+1 : refClose]),
		Definition: item,
	}
	actions := rest[refClose+1:]
	if a := onDeleteRegex.FindStringSubmatch(actions); a != nil {
		fk.OnDelete = strings.ToUpper(collapseWhitespace(a[1]))
	}
	if a := onUpdateRegex.FindStringSubmatch(actions); a != nil {
		fk.OnUpdate = strings.ToUpper(collapseWhitespace(a[1]))
	}

	switch {
	case m[2] >= 0:
		fk.Name = UnquoteIdentifier(item[m[2]:m[3]])
	case m[4] >= 0:
		fk.Name = UnquoteIdentifier(item[m[4]:m[5]])
	default:
		fk.Name = t.generatedForeignKeyName()
	}
	return fk
}

// generatedForeignKeyName mimics InnoDB's <table>_ibfk_N naming
func (t *TableDefinition) generatedForeignKeyName() string {
	for n := len(t.ForeignKeys) + 1; ; n++ {
		name := fmt.Sprintf("%s_ibfk_%d", t.Name, n)
		if t.ForeignKey(name) == nil {
			return name
		}
	}
}

// parseKeyParts turns "`a`, `b`(10) DESC" into ["a", "b(10) DESC"].
// Expression key parts are kept as written.
func parseKeyParts(list string) []string {
	parts := []string{}
	for _, p := range splitTopLevel(list, ',') {
		p = collapseUnquoted(p)
		if p == "" {
			continue
		}
		m := keyPartRegex.FindStringSubmatch(p)
		if m == nil {
			parts = append(parts, p)
			continue
		}
		part := UnquoteIdentifier(m[1])
		if m[2] != "" {
			part += "(" + strings.TrimSpace(strings.Trim(m[2], "() ")) + ")"
		}
		if strings.EqualFold(m[3], "DESC") {
			part += " DESC"
		}
		parts = append(parts, part)
	}
	return parts
}

func parseTableOptions(text string, checks []string) TableOptions {
	opts := TableOptions{
		Checks: checks,
		Raw:    collapseWhitespace(text),
	}
	if m := engineRegex.FindStringSubmatch(text); m != nil {
		opts.Engine = m[1]
	}
	if m := charsetRegex.FindStringSubmatch(text); m != nil {
		opts.Charset = m[1]
	}
	if m := collateRegex.FindStringSubmatch(text); m != nil {
		opts.Collation = m[1]
	}
	if m := tableComment.FindStringSubmatch(text); m != nil {
		opts.Comment = m[1]
	}
	return opts
}
