package update

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/temirov/repo_updater/internal/utils"
)

const (
	progressLineTemplateConstant        = "Updating %s\n"
	summaryHeadingConstant              = "Update summary"
	summaryRepositoryColumnConstant     = "REPOSITORY"
	summaryBranchColumnConstant         = "BRANCH"
	summaryStatusColumnConstant         = "STATUS"
	summaryMessageColumnConstant        = "MESSAGE"
	summaryColumnGapConstant            = "  "
	summaryCountsTemplateConstant       = "Total: %d  Succeeded: %d  Failed: %d  Skipped: %d\n"
	summaryEmptyCellPlaceholderConstant = "-"
	newlineConstant                     = "\n"
)

// Reporter renders progress lines and the final summary table for an update run.
type Reporter struct {
	writer        io.Writer
	headingStyle  *color.Color
	successStyle  *color.Color
	failureStyle  *color.Color
	skippedStyle  *color.Color
	progressStyle *color.Color
}

// NewReporter constructs a reporter writing to the provided writer.
// Monochrome mode strips all ANSI styling so output redirects cleanly.
func NewReporter(writer io.Writer, monochrome bool) *Reporter {
	reporter := &Reporter{
		writer:        utils.NewFlushingWriter(writer),
		headingStyle:  color.New(color.Bold),
		successStyle:  color.New(color.FgGreen),
		failureStyle:  color.New(color.FgRed),
		skippedStyle:  color.New(color.FgYellow),
		progressStyle: color.New(color.FgCyan),
	}

	if monochrome {
		reporter.headingStyle.DisableColor()
		reporter.successStyle.DisableColor()
		reporter.failureStyle.DisableColor()
		reporter.skippedStyle.DisableColor()
		reporter.progressStyle.DisableColor()
	} else {
		reporter.headingStyle.EnableColor()
		reporter.successStyle.EnableColor()
		reporter.failureStyle.EnableColor()
		reporter.skippedStyle.EnableColor()
		reporter.progressStyle.EnableColor()
	}

	return reporter
}

// RepositoryStarted prints a progress line as a repository begins processing.
func (reporter *Reporter) RepositoryStarted(repositoryPath string) {
	if reporter == nil || reporter.writer == nil {
		return
	}
	fmt.Fprintf(reporter.writer, progressLineTemplateConstant, reporter.progressStyle.Sprint(repositoryPath))
}

// PrintSummary renders the result table followed by aggregate counts.
func (reporter *Reporter) PrintSummary(results []UpdateResult) {
	if reporter == nil || reporter.writer == nil {
		return
	}

	fmt.Fprint(reporter.writer, newlineConstant)
	fmt.Fprintln(reporter.writer, reporter.headingStyle.Sprint(summaryHeadingConstant))

	headerCells := []string{
		summaryRepositoryColumnConstant,
		summaryBranchColumnConstant,
		summaryStatusColumnConstant,
		summaryMessageColumnConstant,
	}

	tableRows := make([][]string, 0, len(results))
	for _, result := range results {
		tableRows = append(tableRows, []string{
			orPlaceholder(result.RepositoryPath),
			orPlaceholder(result.BranchName),
			statusLabel(result.Outcome),
			orPlaceholder(result.Message),
		})
	}

	// Widths come from the raw cell text; styling is applied afterwards because
	// ANSI escape sequences would distort padding arithmetic.
	columnWidths := computeColumnWidths(headerCells, tableRows)

	reporter.printRow(headerCells, columnWidths, func(columnIndex int, cell string) string {
		return reporter.headingStyle.Sprint(cell)
	})
	for rowIndex, tableRow := range tableRows {
		outcome := results[rowIndex].Outcome
		reporter.printRow(tableRow, columnWidths, func(columnIndex int, cell string) string {
			if columnIndex == 2 {
				return reporter.outcomeStyle(outcome).Sprint(cell)
			}
			return cell
		})
	}

	totalCount, succeededCount, failedCount, skippedCount := tallyOutcomes(results)
	fmt.Fprint(reporter.writer, newlineConstant)
	fmt.Fprintf(reporter.writer, summaryCountsTemplateConstant, totalCount, succeededCount, failedCount, skippedCount)
}

func (reporter *Reporter) printRow(cells []string, columnWidths []int, styleCell func(columnIndex int, cell string) string) {
	renderedCells := make([]string, 0, len(cells))
	for columnIndex, cell := range cells {
		paddedCell := cell + strings.Repeat(" ", columnWidths[columnIndex]-len(cell))
		if columnIndex == len(cells)-1 {
			paddedCell = cell
		}
		renderedCells = append(renderedCells, styleCell(columnIndex, paddedCell))
	}
	fmt.Fprintln(reporter.writer, strings.Join(renderedCells, summaryColumnGapConstant))
}

func (reporter *Reporter) outcomeStyle(outcome UpdateOutcome) *color.Color {
	switch outcome {
	case OutcomeSuccess:
		return reporter.successStyle
	case OutcomeFailed:
		return reporter.failureStyle
	default:
		return reporter.skippedStyle
	}
}

func computeColumnWidths(headerCells []string, tableRows [][]string) []int {
	columnWidths := make([]int, len(headerCells))
	for columnIndex, headerCell := range headerCells {
		columnWidths[columnIndex] = len(headerCell)
	}
	for _, tableRow := range tableRows {
		for columnIndex, cell := range tableRow {
			if len(cell) > columnWidths[columnIndex] {
				columnWidths[columnIndex] = len(cell)
			}
		}
	}
	return columnWidths
}

func statusLabel(outcome UpdateOutcome) string {
	return strings.ToUpper(string(outcome))
}

func orPlaceholder(value string) string {
	if len(strings.TrimSpace(value)) == 0 {
		return summaryEmptyCellPlaceholderConstant
	}
	return value
}

func tallyOutcomes(results []UpdateResult) (int, int, int, int) {
	totalCount := len(results)
	succeededCount := 0
	failedCount := 0
	skippedCount := 0
	for _, result := range results {
		switch result.Outcome {
		case OutcomeSuccess:
			succeededCount++
		case OutcomeFailed:
			failedCount++
		case OutcomeSkipped:
			skippedCount++
		}
	}
	return totalCount, succeededCount, failedCount, skippedCount
}
