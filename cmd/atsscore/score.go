package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"resume-ats/internal/ats"
	"resume-ats/internal/extract"
)

type scoreOptions struct {
	resumePath   string
	jobPath      string
	taxonomyPath string
	asJSON       bool
}

func newScoreCmd() *cobra.Command {
	opts := &scoreOptions{}
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a resume file against a job description file",
		Long:  "Score reads a resume and a job description (PDF, DOCX or plain text) and prints the ATS report.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScore(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.resumePath, "resume", "r", "", "Path to the resume file (required)")
	cmd.Flags().StringVarP(&opts.jobPath, "job", "j", "", "Path to the job description file (required)")
	cmd.Flags().StringVar(&opts.taxonomyPath, "taxonomy", "", "Path to a taxonomy YAML file replacing the embedded one")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the report as JSON")
	_ = cmd.MarkFlagRequired("resume")
	_ = cmd.MarkFlagRequired("job")
	return cmd
}

func runScore(cmd *cobra.Command, opts *scoreOptions) error {
	resume, err := readDocument(cmd, opts.resumePath)
	if err != nil {
		return fmt.Errorf("read resume: %w", err)
	}
	jd, err := readDocument(cmd, opts.jobPath)
	if err != nil {
		return fmt.Errorf("read job description: %w", err)
	}

	var engineOpts []ats.Option
	if opts.taxonomyPath != "" {
		raw, err := os.ReadFile(opts.taxonomyPath)
		if err != nil {
			return fmt.Errorf("read taxonomy: %w", err)
		}
		tax, err := ats.ParseTaxonomy(raw)
		if err != nil {
			return err
		}
		engineOpts = append(engineOpts, ats.WithTaxonomy(tax))
	}

	engine := ats.New(engineOpts...)
	report := engine.Score(resume, jd)
	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printReport(out, report, engine.Taxonomy().CategoryNames())
	return nil
}

func readDocument(cmd *cobra.Command, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return extract.ExtractTextFromBytes(cmd.Context(), data, "", filepath.Base(path))
}

func printReport(w io.Writer, r ats.Report, categories []string) {
	fmt.Fprintf(w, "Score: %d/100\n", r.Score)
	if r.JobAnalysis != nil {
		fmt.Fprintf(w, "Role: %s\n", r.JobAnalysis.RoleType)
	}
	fmt.Fprintf(w, "Experience: %.0f\n", r.ExperienceScore)
	fmt.Fprintf(w, "Education: %.0f\n", r.EducationScore)

	for _, category := range categories {
		if score, ok := r.Breakdown[category]; ok {
			fmt.Fprintf(w, "  %-22s %5.1f\n", category, score)
		}
	}
	if len(r.Suggestions) > 0 {
		fmt.Fprintln(w, "Suggestions:")
		for _, s := range r.Suggestions {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
}
