package shipping

import "github.com/mamadbah2/storefront/internal/domain/models"

// BuildReport groups units by product name in first-seen order and sums the
// weight of every unit. It returns false when there is nothing to ship.
func BuildReport(units []models.ShipmentUnit) (models.ShipmentReport, bool) {
	if len(units) == 0 {
		return models.ShipmentReport{}, false
	}

	var report models.ShipmentReport
	index := make(map[string]int, len(units))

	for _, unit := range units {
		pos, seen := index[unit.Name]
		if !seen {
			pos = len(report.Lines)
			index[unit.Name] = pos
			report.Lines = append(report.Lines, models.ShipmentLine{Name: unit.Name})
		}
		report.Lines[pos].Count++
		report.TotalWeightKg += unit.WeightKg
	}

	return report, true
}
