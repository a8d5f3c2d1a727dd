// Package review exports flagged messages to a spreadsheet for manual
// inspection before a campaign goes out.
package review

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/outreach-cli/internal/model"
)

var header = []string{
	"Name", "Profile URL", "Company", "Title",
	"Flag", "Avg Score", "Service", "Method", "Authority",
	"Inferred Service", "Actual Service", "Reason",
	"Message", "Original Message", "Final Flag",
}

// FilterFlagged keeps leads whose latest validation is REVIEW, FAIL or
// ERROR. The final validation wins over the first pass when a message was
// corrected.
func FilterFlagged(leads []model.Lead) []model.Lead {
	var flagged []model.Lead
	for _, lead := range leads {
		v := latestValidation(lead)
		if v == nil {
			continue
		}
		if v.Flag != model.FlagPass {
			flagged = append(flagged, lead)
		}
	}
	return flagged
}

func latestValidation(lead model.Lead) *model.ValidationResult {
	if lead.Message == nil {
		return nil
	}
	if lead.Message.FinalValidation != nil {
		return lead.Message.FinalValidation
	}
	return lead.Message.Validation
}

// WriteXLSX writes flagged leads to an .xlsx review sheet.
func WriteXLSX(path string, leads []model.Lead) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Validation Review")
	if err != nil {
		return eris.Wrap(err, "review: add sheet")
	}

	headerRow := sheet.AddRow()
	for _, h := range header {
		headerRow.AddCell().Value = h
	}

	for _, lead := range leads {
		v := latestValidation(lead)
		if v == nil {
			continue
		}

		row := sheet.AddRow()
		row.AddCell().Value = lead.Profile.FullName
		row.AddCell().Value = lead.Profile.URL
		row.AddCell().Value = lead.Profile.CompanyName
		row.AddCell().Value = lead.Profile.JobTitle
		row.AddCell().Value = string(v.Flag)
		row.AddCell().Value = fmt.Sprintf("%.1f", v.AvgScore)
		row.AddCell().SetInt(v.ServiceScore)
		row.AddCell().SetInt(v.MethodScore)
		row.AddCell().SetInt(v.AuthorityScore)
		row.AddCell().Value = v.InferredService
		row.AddCell().Value = v.ActualService
		row.AddCell().Value = v.Reason

		if lead.Message != nil {
			row.AddCell().Value = lead.Message.Text
			row.AddCell().Value = lead.Message.Original
			if lead.Message.FinalValidation != nil {
				row.AddCell().Value = string(lead.Message.FinalValidation.Flag)
			}
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "review: save workbook")
	}
	return nil
}
