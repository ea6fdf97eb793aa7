package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/diegocaceres21/saae-discount-api/internal/models"
	appErrors "github.com/diegocaceres21/saae-discount-api/pkg/errors"
)

// ExtractTermInfo scans a student's kardex for the target term(s) and returns
// the credit load plus the career label taken from the matching block header.
//
// Blocks are scanned newest-first. In single mode the first match wins. In
// aggregate mode credits of every matching block are summed while the career
// stays the one from the most recent match.
func ExtractTermInfo(blocks []models.KardexTermBlock, targetTerms []string, aggregate bool) (int, string, error) {
	total := 0
	career := ""
	found := false

	for i := len(blocks) - 1; i >= 0; i-- {
		block := blocks[i]
		if !headerMatchesTerm(block.Header, targetTerms) {
			continue
		}

		credits, err := blockCredits(block)
		if err != nil {
			return 0, "", err
		}

		if !found {
			career = careerFromHeader(block.Header)
			found = true
		}

		if !aggregate {
			return credits, career, nil
		}
		total += credits
	}

	if !found {
		return 0, "", appErrors.Clone(appErrors.ErrTermNotFound,
			fmt.Sprintf("no kardex entry matches term %s", strings.Join(targetTerms, ", ")))
	}
	return total, career, nil
}

func headerMatchesTerm(header string, targetTerms []string) bool {
	for _, term := range targetTerms {
		if term != "" && strings.Contains(header, term) {
			return true
		}
	}
	return false
}

// blockCredits parses the cumulative credit count from the block's last body
// row. Anything short of a clean integer is a parse error; the pipeline never
// treats garbage as zero credits.
func blockCredits(block models.KardexTermBlock) (int, error) {
	if len(block.Rows) == 0 {
		return 0, appErrors.Clone(appErrors.ErrParse, "kardex block has no rows")
	}
	lastRow := block.Rows[len(block.Rows)-1]
	if models.KardexCreditCell >= len(lastRow) {
		return 0, appErrors.Clone(appErrors.ErrParse,
			fmt.Sprintf("kardex row has %d cells, credit cell %d missing", len(lastRow), models.KardexCreditCell))
	}
	raw := strings.TrimSpace(lastRow[models.KardexCreditCell])
	credits, err := strconv.Atoi(raw)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrParse.Code, appErrors.ErrParse.Status,
			fmt.Sprintf("kardex credit cell %q is not a number", raw))
	}
	return credits, nil
}

// careerFromHeader takes the last colon-delimited header segment and strips
// diacritics so it can be matched against the catalog.
func careerFromHeader(header string) string {
	idx := strings.LastIndex(header, ":")
	segment := header
	if idx >= 0 {
		segment = header[idx+1:]
	}
	return NormalizeCareerName(strings.TrimSpace(segment))
}
