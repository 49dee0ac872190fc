package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
	"github.com/noah-isme/pacs-worklist-api/internal/worklist"
)

var pageQuery string

var pageCmd = &cobra.Command{
	Use:   "page",
	Short: "Render one worklist page from a fixture",
	Long: `Resolve --query against the defaults, cut the fetch window out of the fixture,
sort it and print the visible rows.

Example:
  worklistctl page -f studies.yaml --query "sortBy=patientName&sortDirection=ascending&pageNumber=2"`,
	RunE: runPage,
}

func init() {
	pageCmd.Flags().StringVarP(&pageQuery, "query", "q", "", "Worklist query string")
}

func runPage(cmd *cobra.Command, args []string) error {
	studies, err := loadFixture(fixturePath)
	if err != nil {
		return err
	}

	defaults := worklist.DefaultFilterState(resultsPerPage)
	state := worklist.Resolve(worklist.ParseRawQuery(pageQuery), nil, defaults)

	window := worklist.DataWindowFor(state, studiesLimit)
	fetched := sliceWindow(studies, window)
	total := len(fetched)
	ordered := worklist.ApplySort(fetched, state, total, studiesLimit)
	visible, info := worklist.Paginate(ordered, state, total, studiesLimit)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "query: %s\n", worklist.ToQueryString(state, defaults, nil))
	fmt.Fprintf(out, "window: offset=%d limit=%d fetched=%d\n", window.Offset, window.Limit, total)
	fmt.Fprintf(out, "page: %d rolling=%d of %d\n", info.PageNumber, info.RollingPage+1, info.WindowSize)
	if hint := worklist.DefaultSort(state, total, studiesLimit); hint != nil {
		fmt.Fprintf(out, "sort: %s %s (implicit)\n", hint.SortBy, hint.SortDirection)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPATIENT\tMRN\tDATE\tTIME\tMODALITIES\tACCESSION\tDESCRIPTION")
	for i, study := range visible {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			info.Offset+i+1,
			study.PatientName,
			study.MRN,
			worklist.FormatStudyDate(study.Date),
			worklist.FormatStudyTime(study.Time),
			study.Modalities,
			study.Accession,
			study.Description,
		)
	}
	return tw.Flush()
}

func sliceWindow(studies []models.Study, window models.DataWindow) []models.Study {
	if window.Offset >= len(studies) {
		return []models.Study{}
	}
	end := window.Offset + window.Limit
	if end > len(studies) {
		end = len(studies)
	}
	return append([]models.Study(nil), studies[window.Offset:end]...)
}
