package plancmder

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cutplanco/cutplan/pkg/attribution"
	"github.com/cutplanco/cutplan/pkg/cliui"
	"github.com/cutplanco/cutplan/pkg/plan"
)

// planJSON is the machine-readable plan shape emitted by --json.
type planJSON struct {
	Repo       string `json:"repo,omitempty"`
	Target     string `json:"target"`
	Comparison string `json:"comparison,omitempty"`

	Branch struct {
		Name       string `json:"name"`
		SourceRef  string `json:"source_ref,omitempty"`
		MustCreate bool   `json:"must_create"`
	} `json:"branch"`

	Range struct {
		FromTag string `json:"from_tag,omitempty"`
		HeadRef string `json:"head_ref"`
	} `json:"range"`

	Commits  []commitJSON  `json:"commits"`
	Partials []partialJSON `json:"partials,omitempty"`
}

type commitJSON struct {
	SHA      string `json:"sha"`
	Subject  string `json:"subject"`
	PRNumber int    `json:"pr_number,omitempty"`
	IssueKey string `json:"issue_key,omitempty"`
	Issue    string `json:"issue,omitempty"`
	IssueURL string `json:"issue_url,omitempty"`
}

type partialJSON struct {
	IssueKey      string   `json:"issue_key"`
	ExtractedFrom string   `json:"extracted_from"`
	MatchType     string   `json:"match_type"`
	FoundInRepo   string   `json:"found_in_repo,omitempty"`
	IssueURL      string   `json:"issue_url,omitempty"`
	Reasons       []string `json:"reasons"`
}

func renderJSON(w io.Writer, repo string, result *plan.Result) error {
	out := planJSON{
		Repo:   repo,
		Target: result.Target.Render(false),
	}
	if result.Comparison != nil {
		out.Comparison = result.Comparison.Render(false)
	}

	out.Branch.Name = result.Branch.Name
	out.Branch.SourceRef = result.Branch.SourceRef
	out.Branch.MustCreate = result.Branch.MustCreate

	out.Range.FromTag = result.Range.FromTag
	out.Range.HeadRef = result.Range.HeadRef

	bySHA := attributionsBySHA(result.Attributions)
	out.Commits = make([]commitJSON, 0, len(result.Range.Commits))
	for _, c := range result.Range.Commits {
		cj := commitJSON{SHA: c.SHA, Subject: c.Subject, PRNumber: c.PRNumber}
		if r, ok := bySHA[c.SHA]; ok {
			cj.IssueKey = r.IssueKey
			if r.Attributed() {
				cj.Issue = fmt.Sprintf("%s#%d", r.Issue.Repo, r.Issue.Number)
				cj.IssueURL = r.Issue.URL
			}
		}
		out.Commits = append(out.Commits, cj)
	}

	for _, p := range result.Partials {
		pj := partialJSON{
			IssueKey:      p.IssueKey,
			ExtractedFrom: p.ExtractedFrom,
			MatchType:     p.MatchType.String(),
			FoundInRepo:   p.FoundInRepo,
			IssueURL:      p.IssueURL,
		}
		for _, r := range p.Reasons {
			pj.Reasons = append(pj.Reasons, r.Description())
		}
		out.Partials = append(out.Partials, pj)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// renderPlan writes the human-readable plan summary. The header renders as
// markdown through glamour on a TTY and as plain text otherwise.
func renderPlan(w io.Writer, result *plan.Result) error {
	var md strings.Builder

	fmt.Fprintf(&md, "# Release %s\n\n", result.Target.Render(false))
	if result.Comparison != nil {
		fmt.Fprintf(&md, "Compared against **%s**.\n\n", result.Comparison.Render(false))
	} else {
		fmt.Fprint(&md, "First release, no comparison version.\n\n")
	}

	if result.Branch.MustCreate {
		fmt.Fprintf(&md, "Branch `%s` does not exist yet; create it from `%s`.\n",
			result.Branch.Name, result.Branch.SourceRef)
	} else {
		fmt.Fprintf(&md, "Branch `%s` already exists.\n", result.Branch.Name)
	}

	header := md.String()
	if cliui.IsTTY() {
		if rendered, err := cliui.RenderMarkdown(header); err == nil {
			header = rendered
		}
	}
	fmt.Fprint(w, header)

	renderCommits(w, result)
	renderPartials(w, result.Partials)
	return nil
}

func renderCommits(w io.Writer, result *plan.Result) {
	fmt.Fprintf(w, "\n  %s\n\n", cliui.TitleStyle.Render(rangeTitle(result.Range)))

	if len(result.Range.Commits) == 0 {
		fmt.Fprintf(w, "  %s\n", cliui.DimStyle.Render("No new commits."))
		return
	}

	bySHA := attributionsBySHA(result.Attributions)
	for _, c := range result.Range.Commits {
		issue := ""
		if r, ok := bySHA[c.SHA]; ok && r.Attributed() {
			issue = cliui.ValueStyle.Render(fmt.Sprintf("  %s#%d", r.Issue.Repo, r.Issue.Number))
		}
		fmt.Fprintf(w, "  %s %s%s\n",
			cliui.DimStyle.Render(shortSHA(c.SHA)),
			c.Subject,
			issue,
		)
	}
}

func renderPartials(w io.Writer, partials []attribution.PartialMatch) {
	if len(partials) == 0 {
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintf(w, "\n  %s\n\n", cliui.WarnStyle.Render(fmt.Sprintf("%d partial matches", len(partials))))
	for _, p := range partials {
		fmt.Fprintf(w, "  %s %s (%s, from %s)\n",
			cliui.WarnStyle.Render("!"),
			p.IssueKey,
			p.MatchType,
			p.ExtractedFrom,
		)
		for _, r := range p.Reasons {
			fmt.Fprintf(w, "      %s\n", cliui.DimStyle.Render(r.Description()))
		}
	}
	fmt.Fprintln(w)
}

func rangeTitle(rng plan.CommitRange) string {
	if rng.FromTag == "" {
		return fmt.Sprintf("Commits reachable from %s", rng.HeadRef)
	}
	return fmt.Sprintf("Commits in %s..%s", rng.FromTag, rng.HeadRef)
}

func attributionsBySHA(results []attribution.Result) map[string]attribution.Result {
	bySHA := make(map[string]attribution.Result, len(results))
	for _, r := range results {
		bySHA[r.Change.SHA] = r
	}
	return bySHA
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
