package whctl

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/oremus-labs/webhook-receiver/internal/store"
	"sigs.k8s.io/yaml"
)

const summaryWidth = 72

func printJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printYAML(w io.Writer, data interface{}) error {
	out, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func flushTable(tw *tabwriter.Writer) {
	_ = tw.Flush()
}

// writeOutput prints data in a machine format. It reports false for the
// table format, which callers render themselves.
func writeOutput(w io.Writer, format string, data interface{}) (bool, error) {
	switch strings.ToLower(format) {
	case "json":
		return true, printJSON(w, data)
	case "yaml":
		return true, printYAML(w, data)
	case "table", "":
		return false, nil
	default:
		return true, fmt.Errorf("unsupported output format %q", format)
	}
}

func printEventTable(w io.Writer, list []store.Event) {
	tw := newTable(w)
	fmt.Fprintln(tw, "RECEIVED\tSTRUCTURED\tSUMMARY")
	for _, evt := range list {
		fmt.Fprintf(tw, "%s\t%t\t%s\n", formatMillis(evt.Timestamp), evt.Analysis.SuccessEvaluation, truncate(evt.Analysis.Summary, summaryWidth))
	}
	flushTable(tw)
}

func formatMillis(ms int64) string {
	if ms <= 0 {
		return "-"
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
