package cli

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/WhileEndless/go-reqresp/pkg/charset"
	"github.com/WhileEndless/go-reqresp/pkg/logging"
	"github.com/WhileEndless/go-reqresp/pkg/response"
)

var cliLog = logging.GetLogger("cli")

type headerOutput struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type decodeOutput struct {
	Protocol string         `json:"protocol"`
	Code     int            `json:"code"`
	Message  string         `json:"message"`
	Headers  []headerOutput `json:"headers"`
	Content  string         `json:"content"`
	MD5      string         `json:"md5"`
	Chars    int            `json:"chars"`
	Charset  string         `json:"charset,omitempty"`
	Cookie   string         `json:"cookie,omitempty"`
	Location string         `json:"location,omitempty"`
}

func (a *app) decodeCmd() *cobra.Command {
	var headerFile, bodyFile, rawFile string

	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Parse a captured response and print it decoded",
		Long: `decode reads either a header file (plus an optional body file) or a
single raw capture, and prints the final response with its body decoded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rawHeader, rawBody, err := readInput(headerFile, bodyFile, rawFile)
			if err != nil {
				return err
			}

			opts := response.ParseOptions{
				SourceType:     response.ParseSourceType(a.cfg.Source),
				SniffCharset:   a.cfg.Sniff,
				MaxDecodedSize: a.cfg.MaxDecodedSize,
			}
			resp, err := response.Parse(rawHeader, rawBody, opts)
			if err != nil {
				return err
			}
			resp.Hash()
			cliLog.WithField("code", resp.Code).WithField("chars", resp.CharLength).Debug("response decoded")

			return writeResponse(cmd, a.cfg.Format, resp)
		},
	}

	f := cmd.Flags()
	f.StringVar(&headerFile, "header", "", "File holding the raw status line(s) and headers")
	f.StringVar(&bodyFile, "body", "", "File holding the raw body bytes")
	f.StringVar(&rawFile, "raw", "", "File holding a whole captured response")
	f.String("source", "other", "Body source: curl (already de-chunked) or other")
	f.StringP("format", "f", "text", "Output format (text, json)")
	f.Bool("sniff", false, "Use a charset declared in the document when headers give none")
	f.Int64("max-size", 0, "Maximum decompressed body size in bytes (0 = unlimited)")

	return cmd
}

func readInput(headerFile, bodyFile, rawFile string) (string, []byte, error) {
	switch {
	case rawFile != "" && (headerFile != "" || bodyFile != ""):
		return "", nil, fmt.Errorf("--raw cannot be combined with --header or --body")
	case rawFile != "":
		data, err := os.ReadFile(rawFile)
		if err != nil {
			return "", nil, err
		}
		header, body := response.SplitRaw(data)
		return header, body, nil
	case headerFile != "":
		header, err := os.ReadFile(headerFile)
		if err != nil {
			return "", nil, err
		}
		if bodyFile == "" {
			return string(header), nil, nil
		}
		body, err := os.ReadFile(bodyFile)
		if err != nil {
			return "", nil, err
		}
		return string(header), body, nil
	default:
		return "", nil, fmt.Errorf("one of --header or --raw is required")
	}
}

func writeResponse(cmd *cobra.Command, format string, resp *response.Response) error {
	out := cmd.OutOrStdout()
	if format != "json" {
		_, err := resp.WriteTo(out)
		if err == nil {
			_, err = fmt.Fprintln(out)
		}
		return err
	}

	doc := decodeOutput{
		Protocol: resp.Protocol,
		Code:     resp.Code,
		Message:  resp.Message,
		Headers:  make([]headerOutput, 0, resp.Headers.Len()),
		Content:  resp.Content,
		MD5:      resp.ContentHash,
		Chars:    resp.CharLength,
		Charset:  resp.Charset,
		Cookie:   resp.Cookie(),
	}
	for _, h := range resp.Headers.All() {
		doc.Headers = append(doc.Headers, headerOutput{Name: h.Name, Value: h.Value})
	}
	if loc, ok := resp.Location(); ok {
		doc.Location = loc
	}

	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func (a *app) sniffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sniff FILE",
		Short: "Print the charsets a document declares",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			for _, cs := range charset.Sniff(string(data)) {
				fmt.Fprintln(cmd.OutOrStdout(), cs)
			}
			return nil
		},
	}
}
