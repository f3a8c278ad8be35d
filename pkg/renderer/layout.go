package renderer

// calculateContentRows determines how many grid rows a section's content
// needs. Elements occupy overlapping row ranges (placement is explicit per
// element), so the section extent is the maximum over elements, not a sum.
func calculateContentRows(content ElementList, data map[string]any) int {
	rows := 0
	for _, el := range content {
		if extent := elementRowExtent(el, data); extent > rows {
			rows = extent
		}
	}
	return rows
}

func elementRowExtent(el Element, data map[string]any) int {
	switch el := el.(type) {
	case *FieldElement:
		return placedRowExtent(el.Position, el.Span)
	case *StaticTextElement:
		return placedRowExtent(el.Position, el.Span)
	case *ListElement:
		if el.Position != nil {
			return placedRowExtent(el.Position, el.Span)
		}
		return calculateListRows(el, data)
	case *ConditionalElement, *StyleElement:
		return 1
	default:
		return 1
	}
}

func placedRowExtent(pos *Position, span *Span) int {
	if pos == nil {
		return 1
	}
	return pos.Row + rowSpanOf(span)
}

func rowSpanOf(span *Span) int {
	if span == nil || span.RowSpan <= 0 {
		return 1
	}
	return span.RowSpan
}

// calculateListRows estimates the rows a list occupies: a header row, an
// extra row when an aggregation is configured, then the per-item rows. A
// grouped list trades the header row for one header per group.
func calculateListRows(list *ListElement, data map[string]any) int {
	raw, ok := lookupPath(data, list.Name)
	if !ok {
		return 0
	}
	items, ok := itemList(raw)
	if !ok {
		return 0
	}

	base := 1
	if list.Aggregation != "" {
		base++
	}

	if list.GroupBy != "" {
		total := base - 1
		for _, g := range groupItems(items, list.GroupBy) {
			total += 1 + len(g.Items)
		}
		return total
	}

	total := base
	for range items {
		total += listItemRowExtent(list.Content)
	}
	return total
}

// listItemRowExtent is the tallest explicit row span among a list's field
// templates; every item contributes at least one row.
func listItemRowExtent(content ElementList) int {
	extent := 1
	for _, el := range content {
		field, ok := el.(*FieldElement)
		if !ok || field.Position == nil {
			continue
		}
		if span := rowSpanOf(field.Span); span > extent {
			extent = span
		}
	}
	return extent
}

// uncategorizedGroup collects items whose grouping value is missing or falsy.
const uncategorizedGroup = "Uncategorized"

type itemGroup struct {
	Name  string
	Items []map[string]any
}

// groupItems partitions items by the grouping key, preserving first-seen
// group order.
func groupItems(items []map[string]any, key string) []itemGroup {
	var groups []itemGroup
	index := make(map[string]int)

	for _, item := range items {
		name := groupLabel(item[key])
		i, seen := index[name]
		if !seen {
			i = len(groups)
			index[name] = i
			groups = append(groups, itemGroup{Name: name})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}

func groupLabel(v any) string {
	if isFalsy(v) {
		return uncategorizedGroup
	}
	return FormatValue(v)
}

func isFalsy(v any) bool {
	switch value := v.(type) {
	case nil:
		return true
	case string:
		return value == ""
	case bool:
		return !value
	default:
		if n, ok := toNumber(v); ok {
			return n == 0
		}
		return false
	}
}

// aggregate computes a list's configured aggregation over a set of items.
// The raw sum is computed first and divided once for averages.
func aggregate(list *ListElement, items []map[string]any) float64 {
	switch list.Aggregation {
	case AggregationCount:
		return float64(len(items))
	case AggregationSum, AggregationAvg:
		var sum float64
		for _, item := range items {
			n, _ := toNumber(item[list.AggregationField])
			sum += n
		}
		if list.Aggregation == AggregationAvg {
			if len(items) == 0 {
				return 0
			}
			return sum / float64(len(items))
		}
		return sum
	default:
		return 0
	}
}
