package renderer

// lineTotalField is the conventional per-line total column that global sum
// calculations aggregate over.
const lineTotalField = "total_price"

// globalTypeCalculation is the only global type the engine evaluates.
const globalTypeCalculation = "calculation"

// ComputeGlobals evaluates every calculation-typed global once against the
// invoice data. The resulting map is passed into field resolution and is
// never recomputed mid-render.
func ComputeGlobals(globals []GlobalCalculation, data map[string]any) map[string]float64 {
	out := make(map[string]float64, len(globals))
	for _, g := range globals {
		if g.Type != globalTypeCalculation {
			continue
		}
		out[g.Name] = evalCalculation(g.Expression, data)
	}
	return out
}

func evalCalculation(expr Expression, data map[string]any) float64 {
	items, ok := itemList(data[expr.Field])
	if !ok {
		return 0
	}

	switch expr.Operation {
	case AggregationSum:
		var sum float64
		for _, item := range items {
			n, _ := toNumber(item[lineTotalField])
			sum += n
		}
		return sum
	case AggregationCount:
		return float64(len(items))
	default:
		return 0
	}
}

// itemList normalizes an invoice data value into a slice of line-item
// objects. Non-arrays and arrays holding non-objects report false.
func itemList(v any) ([]map[string]any, bool) {
	switch items := v.(type) {
	case []map[string]any:
		return items, true
	case []any:
		out := make([]map[string]any, 0, len(items))
		for _, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, false
			}
			out = append(out, obj)
		}
		return out, true
	default:
		return nil, false
	}
}
