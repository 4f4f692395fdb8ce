package cli

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/WhileEndless/go-reqresp/pkg/response"
	"github.com/WhileEndless/go-reqresp/pkg/search"
)

type matchOutput struct {
	Location string `json:"location"`
	Header   string `json:"header,omitempty"`
	Line     int    `json:"line"`
	Text     string `json:"text"`
	Context  string `json:"context"`
}

func (a *app) searchCmd() *cobra.Command {
	var headerFile, bodyFile, rawFile, in string
	opts := search.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "search PATTERN",
		Short: "Search the decoded headers and content of a captured response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rawHeader, rawBody, err := readInput(headerFile, bodyFile, rawFile)
			if err != nil {
				return err
			}
			resp, err := response.Parse(rawHeader, rawBody, response.ParseOptions{
				SourceType:     response.ParseSourceType(a.cfg.Source),
				SniffCharset:   a.cfg.Sniff,
				MaxDecodedSize: a.cfg.MaxDecodedSize,
			})
			if err != nil {
				return err
			}

			opts.Pattern = args[0]
			opts.Location = search.ParseLocation(in)
			s, err := search.New(opts)
			if err != nil {
				return err
			}
			res := s.Response(resp)
			cliLog.WithField("matches", len(res.Matches)).Debug("search finished")

			return writeMatches(cmd, a.cfg.Format, res)
		},
	}

	f := cmd.Flags()
	f.StringVar(&headerFile, "header", "", "File holding the raw status line(s) and headers")
	f.StringVar(&bodyFile, "body", "", "File holding the raw body bytes")
	f.StringVar(&rawFile, "raw", "", "File holding a whole captured response")
	f.StringVar(&in, "in", "all", "Where to search (headers, content, all)")
	f.BoolVarP(&opts.Regex, "regex", "e", false, "Treat PATTERN as a regular expression")
	f.BoolVarP(&opts.IgnoreCase, "ignore-case", "i", false, "Match case-insensitively")
	f.IntVar(&opts.MaxResults, "max", 0, "Stop after this many matches (0 = unlimited)")
	f.String("source", "other", "Body source: curl (already de-chunked) or other")
	f.StringP("format", "f", "text", "Output format (text, json)")

	return cmd
}

func writeMatches(cmd *cobra.Command, format string, res *search.Result) error {
	out := cmd.OutOrStdout()

	if format == "json" {
		doc := make([]matchOutput, 0, len(res.Matches))
		for _, m := range res.Matches {
			doc = append(doc, matchOutput{
				Location: m.Location.String(),
				Header:   m.Header,
				Line:     m.Line,
				Text:     m.Text,
				Context:  m.Context,
			})
		}
		data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	for _, m := range res.Matches {
		where := m.Location.String()
		if m.Header != "" {
			where += ":" + m.Header
		}
		if _, err := fmt.Fprintf(out, "%s:%d: %s\n", where, m.Line, m.Text); err != nil {
			return err
		}
	}
	return nil
}
