package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nahidhasan98/changed-files/internal/classifier"
	"github.com/nahidhasan98/changed-files/internal/errors"
	"github.com/nahidhasan98/changed-files/internal/logger"
	"github.com/nahidhasan98/changed-files/internal/taskcmd"
)

// Output formats
const (
	FormatAzure = "azure"
	FormatJSON  = "json"
	FormatEnv   = "env"
)

// Reporter publishes results to the host.
type Reporter struct {
	out      io.Writer
	format   string
	isOutput bool
	verbose  bool
	log      *logger.Logger
}

// NewReporter creates a reporter writing to out
func NewReporter(out io.Writer, format string, isOutput, verbose bool, log *logger.Logger) *Reporter {
	if format == "" {
		format = FormatAzure
	}
	return &Reporter{out: out, format: format, isOutput: isOutput, verbose: verbose, log: log}
}

// Publish writes every decision in one write, so a failed run never leaves a
// partial set of variables behind.
func (r *Reporter) Publish(result classifier.Result) error {
	var buf bytes.Buffer

	switch r.format {
	case FormatAzure:
		for _, o := range result {
			if r.verbose {
				buf.WriteString(Summary(o) + "\n")
			}
			buf.WriteString(taskcmd.SetVariable(o.Category, strconv.FormatBool(o.Changed), r.isOutput) + "\n")
		}
	case FormatEnv:
		for _, o := range result {
			fmt.Fprintf(&buf, "%s=%t\n", o.Category, o.Changed)
		}
	case FormatJSON:
		data, err := marshalOrdered(result)
		if err != nil {
			return errors.InternalError(err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	default:
		return errors.ConfigInvalid(fmt.Sprintf("Invalid output format %q", r.format))
	}

	if _, err := r.out.Write(buf.Bytes()); err != nil {
		return errors.InternalError(err)
	}

	for _, o := range result {
		r.log.With("category", o.Category).Infof("changed=%t", o.Changed)
	}
	return nil
}

// Fail reports a failed run.
func (r *Reporter) Fail(err error) {
	appErr := errors.As(err)
	r.log.Error(appErr.Message, appErr.Err)

	if r.format != FormatAzure {
		return
	}
	fmt.Fprintln(r.out, taskcmd.Error(appErr.Error()))
	fmt.Fprintln(r.out, taskcmd.Complete(taskcmd.Failed, appErr.Message))
}

// Summary renders the per-category line printed in verbose runs.
func Summary(o classifier.Outcome) string {
	state := "No change"
	if o.Changed {
		state = "Changes"
	}
	return fmt.Sprintf(">> %s: %s detected since last succeeded build, setting %q to %q",
		strings.ToUpper(o.Category), state, o.Category, strconv.FormatBool(o.Changed))
}

// marshalOrdered encodes the result as a JSON object whose keys follow
// declaration order.
func marshalOrdered(result classifier.Result) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, o := range result {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(o.Category)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatBool(o.Changed))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
