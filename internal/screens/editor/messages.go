package editor

import (
	"github.com/aerladis/eflwizard/internal/pdfconv"
	"github.com/aerladis/eflwizard/internal/preview"
)

// Results from background work. Each carries the id of the request that
// produced it so a superseded result can be dropped; all of them are
// broadcast so they reach the editor while another screen is on top.

// batchDoneMsg is sent when a full set of questions has been generated.
type batchDoneMsg struct {
	gen       int
	questions []string
	err       error
}

func (batchDoneMsg) Broadcast() {}

// singleDoneMsg is sent when one question has been regenerated.
type singleDoneMsg struct {
	gen      int
	index    int
	question string
	err      error
}

func (singleDoneMsg) Broadcast() {}

// exportDoneMsg reports a written DOCX or PDF.
type exportDoneMsg struct {
	gen    int
	path   string
	format string
	method pdfconv.Method
	err    error
}

func (exportDoneMsg) Broadcast() {}

// previewDoneMsg carries a rendered page, matched by content key.
type previewDoneMsg struct {
	key    string
	result preview.Result
	err    error
}

func (previewDoneMsg) Broadcast() {}

// previewDueMsg fires after edits settle; rev is the session revision
// that scheduled it.
type previewDueMsg struct {
	rev int
}

// TemplateChangedMsg is sent when the DOCX template file changes on disk.
type TemplateChangedMsg struct {
	Path string
}

func (TemplateChangedMsg) Broadcast() {}

// statusClearMsg hides the status line if it is still the one shown.
type statusClearMsg struct {
	seq int
}
