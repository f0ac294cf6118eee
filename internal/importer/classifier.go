package importer

import "strings"

// Action is the per-row outcome of classification, and later the
// caller's confirmed choice at commit time.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionSkip   Action = "skip"
)

// Row-level validation messages surfaced in the preview. These are data,
// not request failures.
const (
	errMissingTitle  = "missing required title"
	errMissingHeader = "missing required header"
)

// PreviewRow is one classified row of an import preview. Error rows are
// forced to skip at commit time regardless of the caller's selection.
type PreviewRow struct {
	Line            int               `json:"line"`
	Values          map[string]string `json:"values"`
	Error           string            `json:"error,omitempty"`
	SuggestedAction Action            `json:"suggested_action"`
	DuplicateMatch  *DuplicateMatch   `json:"duplicate_match,omitempty"`
}

// Preview is the full classification result for one import batch.
type Preview struct {
	Headers     []string     `json:"headers"`
	Rows        []PreviewRow `json:"rows"`
	ValidRows   int          `json:"valid_rows"`
	InvalidRows int          `json:"invalid_rows"`
}

// Classify turns a parsed batch into a preview. candidates is the
// existing-entity pool already scoped to the source's entity kind and
// provenance tag.
//
// A batch missing a required header is invalid as a whole: the result is
// a single synthetic error row at line 1, independent of how many data
// lines were supplied. Otherwise each row is classified independently:
// a blank title is a row-level error (action skip, no duplicate lookup);
// an exact duplicate suggests update; a fuzzy duplicate suggests skip;
// no duplicate suggests create.
func Classify(source Source, batch ParsedBatch, candidates []Candidate) (Preview, error) {
	kind, err := source.EntityKind()
	if err != nil {
		return Preview{}, err
	}

	preview := Preview{Headers: batch.Headers}

	for _, required := range source.RequiredHeaders() {
		if !batch.HasHeader(required) {
			preview.Rows = []PreviewRow{{
				Line:            1,
				Values:          map[string]string{},
				Error:           errMissingHeader + " " + required,
				SuggestedAction: ActionSkip,
			}}
			preview.InvalidRows = 1
			return preview, nil
		}
	}

	for _, row := range batch.Rows {
		classified := PreviewRow{Line: row.Line, Values: row.Values}

		title := strings.TrimSpace(row.Values[FieldTitle])
		if title == "" {
			classified.Error = errMissingTitle
			classified.SuggestedAction = ActionSkip
			preview.InvalidRows++
			preview.Rows = append(preview.Rows, classified)
			continue
		}

		match := FindDuplicate(kind, title, candidates)
		classified.DuplicateMatch = match
		switch {
		case match == nil:
			classified.SuggestedAction = ActionCreate
		case match.Kind == MatchExact:
			classified.SuggestedAction = ActionUpdate
		default:
			classified.SuggestedAction = ActionSkip
		}

		preview.ValidRows++
		preview.Rows = append(preview.Rows, classified)
	}

	return preview, nil
}
