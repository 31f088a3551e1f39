package attendance

import "math"

// GenerateReport computes the attendance statistics of every student of `t`, in roster order.
func GenerateReport(t *Table) []ReportRow {
	sessions := len(t.Dates)
	report := make([]ReportRow, 0, len(t.Students))
	for i, st := range t.Students {
		var attended int
		if i < len(t.Marks) {
			for j, present := range t.Marks[i] {
				if j < sessions && present {
					attended++
				}
			}
		}

		row := ReportRow{Name: st.Name, StudentID: st.ID, Attended: attended}
		if sessions > 0 {
			row.Absent = sessions - attended
			row.Percentage = round1(float64(attended) / float64(sessions) * 100)
		}
		report = append(report, row)
	}
	return report
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
