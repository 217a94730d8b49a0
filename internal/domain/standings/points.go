package standings

import "math"

// ResolvePointsModel reads the "points_model" document from a ruleset
// config. Both short and suffixed key spellings are accepted (win or
// win_points, and so on). Anything malformed falls back to the default.
func ResolvePointsModel(config map[string]any) PointsModel {
	model := DefaultPointsModel()
	if config == nil {
		return model
	}

	raw, ok := config["points_model"].(map[string]any)
	if !ok {
		return model
	}

	if v, ok := pointsValue(raw, "win", "win_points"); ok {
		model.Win = v
	}
	if v, ok := pointsValue(raw, "draw", "draw_points"); ok {
		model.Draw = v
	}
	if v, ok := pointsValue(raw, "loss", "loss_points"); ok {
		model.Loss = v
	}

	return model
}

func pointsValue(raw map[string]any, keys ...string) (int, bool) {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case int:
			return n, true
		case int64:
			return int(n), true
		case float64:
			if math.IsNaN(n) || math.IsInf(n, 0) {
				return 0, false
			}
			return int(n), true
		}
	}
	return 0, false
}
