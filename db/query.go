package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"empowerher/models"

	"github.com/tidwall/gjson"
)

// --- Query Structures ---

// QueryCondition represents a single condition like "path operator value".
type QueryCondition struct {
	Path          string      // gjson path into the record, e.g. "module_type" or "choices_made.0"
	Operator      string      // base operator, no "-insensitive" suffix
	ParsedValue   interface{} // string, float64, bool or nil
	ValueType     gjson.Type
	IsInsensitive bool
	Original      string
}

// LogicalOperator represents "and" or "or".
type LogicalOperator string

const (
	LogicAnd LogicalOperator = "and"
	LogicOr  LogicalOperator = "or"
)

// ParsedQuery holds the sequence of conditions and logical operators.
// Logic[i] joins Conditions[i] and Conditions[i+1]; evaluation is left to right.
type ParsedQuery struct {
	Conditions []QueryCondition
	Logic      []LogicalOperator
}

// --- Query Parsing ---

var validOperators = map[string]bool{
	"equals": true, "notequals": true,
	"greaterthan": true, "lessthan": true,
	"greaterthanorequals": true, "lessthanorequals": true,
	"contains": true, "startswith": true, "endswith": true,
}

// Operators that accept the -insensitive suffix.
var insensitiveOperators = map[string]bool{
	"equals": true, "notequals": true,
	"contains": true, "startswith": true, "endswith": true,
}

// ParseContentQuery parses alternating condition / logical operator parts,
// e.g. ["module_type equals legal_rights", "and", "completion_percentage greaterthanorequals 100"].
// An empty input yields a nil query, which matches everything.
func ParseContentQuery(queryParts []string) (*ParsedQuery, error) {
	if len(queryParts) == 0 {
		return nil, nil
	}

	parsed := &ParsedQuery{}
	isExpectingCondition := true

	for i, part := range queryParts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("query part at index %d is empty", i)
		}

		if isExpectingCondition {
			condition, err := parseSingleCondition(part)
			if err != nil {
				return nil, fmt.Errorf("invalid condition at index %d ('%s'): %w", i, part, err)
			}
			parsed.Conditions = append(parsed.Conditions, condition)
		} else {
			logic := LogicalOperator(strings.ToLower(part))
			if logic != LogicAnd && logic != LogicOr {
				return nil, fmt.Errorf("invalid logical operator at index %d: '%s', expected 'and' or 'or'", i, part)
			}
			parsed.Logic = append(parsed.Logic, logic)
		}
		isExpectingCondition = !isExpectingCondition
	}

	if isExpectingCondition {
		return nil, errors.New("query must end with a condition, not a logical operator")
	}
	return parsed, nil
}

// parseSingleCondition parses "path operator value". The value keeps its
// inner spacing, so quoted strings may contain spaces.
func parseSingleCondition(conditionStr string) (QueryCondition, error) {
	parts := strings.Fields(conditionStr)
	if len(parts) < 3 {
		if len(parts) == 2 && validOperators[strings.TrimSuffix(strings.ToLower(parts[1]), "-insensitive")] {
			return QueryCondition{}, errors.New("condition must have a value")
		}
		return QueryCondition{}, errors.New("condition must have the form 'path operator value'")
	}

	path := parts[0]
	operator := strings.ToLower(parts[1])

	// The value is everything after the operator token.
	afterPath := strings.TrimSpace(conditionStr[strings.Index(conditionStr, parts[0])+len(parts[0]):])
	rawValueStr := strings.TrimSpace(afterPath[len(parts[1]):])

	isInsensitive := false
	if strings.HasSuffix(operator, "-insensitive") {
		base := strings.TrimSuffix(operator, "-insensitive")
		if !insensitiveOperators[base] {
			return QueryCondition{}, fmt.Errorf("invalid base operator for insensitive matching '%s'", base)
		}
		isInsensitive = true
		operator = base
	}
	if !validOperators[operator] {
		return QueryCondition{}, fmt.Errorf("invalid operator '%s'", operator)
	}

	parsedValue, valueType := parseLiteral(rawValueStr)
	return QueryCondition{
		Path:          path,
		Operator:      operator,
		ParsedValue:   parsedValue,
		ValueType:     valueType,
		IsInsensitive: isInsensitive,
		Original:      conditionStr,
	}, nil
}

// parseLiteral types a raw value. Order matters: number before bool, since
// "0" and "1" parse as both.
func parseLiteral(raw string) (interface{}, gjson.Type) {
	switch {
	case len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"':
		return raw[1 : len(raw)-1], gjson.String
	case raw == "null":
		return nil, gjson.Null
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f, gjson.Number
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		if b {
			return true, gjson.True
		}
		return false, gjson.False
	}
	return raw, gjson.String
}

// --- Query Evaluation ---

// Match reports whether rec satisfies the query. A nil query matches everything.
func (q *ParsedQuery) Match(rec models.Record) (bool, error) {
	if q == nil || len(q.Conditions) == 0 {
		return true, nil
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("encode record %s: %w", rec.ID(), err)
	}
	recordJSON := string(raw)

	result, err := evaluateSingleCondition(recordJSON, q.Conditions[0])
	if err != nil {
		return false, fmt.Errorf("error evaluating condition '%s': %w", q.Conditions[0].Original, err)
	}
	for i, logic := range q.Logic {
		next, err := evaluateSingleCondition(recordJSON, q.Conditions[i+1])
		if err != nil {
			return false, fmt.Errorf("error evaluating condition '%s': %w", q.Conditions[i+1].Original, err)
		}
		switch logic {
		case LogicAnd:
			result = result && next
		case LogicOr:
			result = result || next
		}
	}
	return result, nil
}

// Predicate adapts the query for Filter/Upsert. A record the query cannot be
// evaluated against (missing path, type mismatch) does not match.
func (q *ParsedQuery) Predicate() Predicate {
	return func(rec models.Record) bool {
		ok, err := q.Match(rec)
		return err == nil && ok
	}
}

// Where parses query parts into a Predicate.
func Where(queryParts ...string) (Predicate, error) {
	q, err := ParseContentQuery(queryParts)
	if err != nil {
		return nil, err
	}
	return q.Predicate(), nil
}

// FieldEquals matches records whose field equals value after JSON normalization,
// so FieldEquals("points", 10) matches a stored 10.0.
func FieldEquals(field string, value any) Predicate {
	want := normalize(value)
	return func(rec models.Record) bool {
		got, ok := rec[field]
		return ok && reflect.DeepEqual(got, want)
	}
}

// AllOf matches when every predicate matches.
func AllOf(preds ...Predicate) Predicate {
	return func(rec models.Record) bool {
		for _, p := range preds {
			if !p(rec) {
				return false
			}
		}
		return true
	}
}

func normalize(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}

func evaluateSingleCondition(recordJSON string, cond QueryCondition) (bool, error) {
	target := gjson.Get(recordJSON, cond.Path)
	if !target.Exists() {
		return false, fmt.Errorf("path '%s' does not exist in record", cond.Path)
	}
	return compareJSONValue(target, cond)
}

// compareJSONValue compares one gjson value against the condition literal.
func compareJSONValue(targetValue gjson.Result, cond QueryCondition) (bool, error) {
	op := cond.Operator
	condValType := cond.ValueType
	targetType := targetValue.Type

	if targetType == gjson.JSON && targetValue.IsArray() && op == "contains" {
		return arrayContains(targetValue, cond), nil
	}

	isNullTarget := targetType == gjson.Null
	isNullCondValue := condValType == gjson.Null
	if isNullTarget || isNullCondValue {
		if isNullTarget && isNullCondValue {
			switch op {
			case "equals":
				return true, nil
			case "notequals":
				return false, nil
			}
			return false, fmt.Errorf("operator '%s' invalid for null comparison", op)
		}
		switch op {
		case "equals", "contains":
			return false, nil
		case "notequals":
			return true, nil
		}
		return false, fmt.Errorf("operator '%s' invalid for comparing null with non-null value", op)
	}

	switch targetType {
	case gjson.String:
		switch op {
		case "equals", "notequals", "contains", "startswith", "endswith":
		default:
			return false, fmt.Errorf("type mismatch: cannot apply numeric operator '%s' to string value", op)
		}
		if condValType != gjson.String {
			if op == "notequals" {
				return true, nil
			}
			return false, fmt.Errorf("type mismatch: cannot compare string with %s using operator '%s'", condValType.String(), op)
		}
		targetStr := targetValue.String()
		valStr := cond.ParsedValue.(string)
		if cond.IsInsensitive {
			targetStr = strings.ToLower(targetStr)
			valStr = strings.ToLower(valStr)
		}
		switch op {
		case "equals":
			return targetStr == valStr, nil
		case "notequals":
			return targetStr != valStr, nil
		case "contains":
			return strings.Contains(targetStr, valStr), nil
		case "startswith":
			return strings.HasPrefix(targetStr, valStr), nil
		default:
			return strings.HasSuffix(targetStr, valStr), nil
		}

	case gjson.Number:
		if cond.IsInsensitive {
			return false, fmt.Errorf("operator '%s' cannot be case-insensitive for numeric comparison", cond.Original)
		}
		switch op {
		case "equals", "notequals", "greaterthan", "lessthan", "greaterthanorequals", "lessthanorequals":
		default:
			return false, fmt.Errorf("type mismatch: cannot apply string operator '%s' to numeric value", op)
		}
		if condValType != gjson.Number {
			if op == "notequals" {
				return true, nil
			}
			return false, fmt.Errorf("type mismatch: value '%v' is not a valid number for comparison with operator '%s'", cond.ParsedValue, op)
		}
		targetNum := targetValue.Float()
		valNum := cond.ParsedValue.(float64)
		switch op {
		case "equals":
			return targetNum == valNum, nil
		case "notequals":
			return targetNum != valNum, nil
		case "greaterthan":
			return targetNum > valNum, nil
		case "lessthan":
			return targetNum < valNum, nil
		case "greaterthanorequals":
			return targetNum >= valNum, nil
		default:
			return targetNum <= valNum, nil
		}

	case gjson.True, gjson.False:
		if cond.IsInsensitive {
			return false, fmt.Errorf("operator '%s' cannot be case-insensitive for boolean comparison", cond.Original)
		}
		if op != "equals" && op != "notequals" {
			return false, fmt.Errorf("operator '%s' is invalid for boolean comparison", op)
		}
		if condValType != gjson.True && condValType != gjson.False {
			if op == "notequals" {
				return true, nil
			}
			return false, fmt.Errorf("type mismatch: value '%v' is not a valid boolean for comparison with operator '%s'", cond.ParsedValue, op)
		}
		eq := targetValue.Bool() == cond.ParsedValue.(bool)
		if op == "equals" {
			return eq, nil
		}
		return !eq, nil

	case gjson.JSON:
		if targetValue.IsArray() {
			return false, fmt.Errorf("operator '%s' is invalid for array comparison", op)
		}
		return false, fmt.Errorf("operator '%s' cannot directly compare JSON objects", op)
	}
	return false, fmt.Errorf("unsupported type '%s' encountered during query evaluation", targetType.String())
}

// arrayContains matches an element of the same JSON type and value.
func arrayContains(arr gjson.Result, cond QueryCondition) bool {
	found := false
	arr.ForEach(func(_, value gjson.Result) bool {
		switch value.Type {
		case gjson.String:
			if cond.ValueType == gjson.String {
				s := cond.ParsedValue.(string)
				if cond.IsInsensitive {
					found = strings.EqualFold(value.String(), s)
				} else {
					found = value.String() == s
				}
			}
		case gjson.Number:
			if cond.ValueType == gjson.Number {
				found = value.Float() == cond.ParsedValue.(float64)
			}
		case gjson.True, gjson.False:
			if cond.ValueType == gjson.True || cond.ValueType == gjson.False {
				found = value.Bool() == cond.ParsedValue.(bool)
			}
		case gjson.Null:
			found = cond.ValueType == gjson.Null
		}
		return !found
	})
	return found
}

// --- Main Query Function ---

// ErrInvalidQuery is returned by QueryRecords for unusable query parameters.
var ErrInvalidQuery = errors.New("invalid query")

// QueryParams holds filtering, sorting and pagination for QueryRecords.
type QueryParams struct {
	ContentQuery []string // Raw content query parts
	SortBy       string   // "createdAt" (default), "updatedAt", or any field path
	Order        string   // "asc" (default) or "desc"
	Page         int      // 1-based page number
	Limit        int      // Max items per page (max 100)
}

// QueryRecords filters, sorts and paginates a collection. It returns the page
// and the total number of matching records.
func QueryRecords(ctx context.Context, rs Records, entityType string, params QueryParams) ([]models.Record, int, error) {
	parsedQuery, err := ParseContentQuery(params.ContentQuery)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: content_query: %v", ErrInvalidQuery, err)
	}
	if err := validateSort(params.SortBy, params.Order); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	var pred Predicate
	if parsedQuery != nil {
		pred = parsedQuery.Predicate()
	}
	records, err := rs.Filter(ctx, entityType, pred)
	if err != nil {
		return nil, 0, err
	}

	total := len(records)
	sortRecords(records, params.SortBy, params.Order)
	return paginateRecords(records, params.Page, params.Limit), total, nil
}

// --- Sorting Helper ---

func validateSort(sortBy, order string) error {
	switch strings.ToLower(order) {
	case "", "asc", "desc":
	default:
		return fmt.Errorf("invalid order value: '%s', expected 'asc' or 'desc'", order)
	}
	if strings.ContainsAny(sortBy, " \t|#*?") {
		return fmt.Errorf("invalid sort_by value: '%s'", sortBy)
	}
	return nil
}

// sortRecords orders by a field path. Numbers compare numerically, everything
// else by its string form; records missing the field sort first. Stable, so
// insertion order breaks ties.
func sortRecords(records []models.Record, sortBy, order string) {
	if sortBy == "" {
		sortBy = models.FieldCreatedAt
	}
	keys := make([]gjson.Result, len(records))
	for i, r := range records {
		raw, _ := json.Marshal(r)
		keys[i] = gjson.GetBytes(raw, sortBy)
	}
	idx := make([]int, len(records))
	for i := range idx {
		idx[i] = i
	}
	less := func(a, b gjson.Result) bool {
		if !a.Exists() || !b.Exists() {
			return !a.Exists() && b.Exists()
		}
		if a.Type == gjson.Number && b.Type == gjson.Number {
			return a.Float() < b.Float()
		}
		return a.String() < b.String()
	}
	desc := strings.ToLower(order) == "desc"
	sort.SliceStable(idx, func(i, j int) bool {
		if desc {
			return less(keys[idx[j]], keys[idx[i]])
		}
		return less(keys[idx[i]], keys[idx[j]])
	})
	sorted := make([]models.Record, len(records))
	for i, k := range idx {
		sorted[i] = records[k]
	}
	copy(records, sorted)
}

// --- Pagination Helper ---
const defaultLimit = 20
const maxLimit = 100

func paginateRecords(records []models.Record, page, limit int) []models.Record {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	startIndex := (page - 1) * limit
	if startIndex >= len(records) {
		return []models.Record{}
	}
	endIndex := startIndex + limit
	if endIndex > len(records) {
		endIndex = len(records)
	}
	return records[startIndex:endIndex]
}
