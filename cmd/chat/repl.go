package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/peterh/liner"

	"github.com/ElarizT/Mavericks/internal/domain"
	"github.com/ElarizT/Mavericks/internal/render"
	"github.com/ElarizT/Mavericks/internal/service"
)

const helpText = `Commands:
  :attach <path>   attach a file
  :files           list attachments
  :retry <n|id>    retry a failed upload
  :remove <n|id>   drop an attachment
  :status          connection, model and session
  :quit            leave
Anything else is sent as a message together with the ready attachments.`

type repl struct {
	ctrl *service.SessionController
	line *liner.State

	outMu sync.Mutex
	out   io.Writer

	unsubscribe func()
}

func newREPL(ctrl *service.SessionController, out io.Writer) *repl {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	r := &repl{ctrl: ctrl, line: line, out: out}
	r.unsubscribe = ctrl.Subscribe(r.onEvent)
	return r
}

func (r *repl) Close() {
	r.unsubscribe()
	r.line.Close()
}

// Run reads commands until :quit, Ctrl+C, Ctrl+D or ctx is done.
func (r *repl) Run(ctx context.Context) {
	for ctx.Err() == nil {
		input, err := r.line.Prompt("you> ")
		if err != nil {
			if !errors.Is(err, liner.ErrPromptAborted) && !errors.Is(err, io.EOF) {
				r.printf("read input: %v\n", err)
			}
			return
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		r.line.AppendHistory(input)

		if !r.execute(ctx, input) {
			return
		}
	}
}

// execute runs one input line and reports whether the loop should go on.
func (r *repl) execute(ctx context.Context, input string) bool {
	if !strings.HasPrefix(input, ":") {
		if err := r.ctrl.Submit(ctx, input); err != nil {
			r.printf("not sent: %v\n", err)
		}
		return true
	}

	cmd, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case ":quit", ":q":
		return false
	case ":help":
		r.printf("%s\n", helpText)
	case ":status":
		r.printf("%s\n", statusLine(r.ctrl.State()))
	case ":files":
		r.printf("%s\n", numbered(r.ctrl.Attachments().List()))
	case ":attach":
		r.attach(ctx, arg)
	case ":retry":
		id, err := resolveAttachment(r.ctrl.Attachments().List(), arg)
		if err == nil {
			err = r.ctrl.Attachments().Retry(ctx, id)
		}
		if err != nil {
			r.printf("retry: %v\n", err)
		}
	case ":remove", ":rm":
		id, err := resolveAttachment(r.ctrl.Attachments().List(), arg)
		if err == nil {
			err = r.ctrl.Attachments().Remove(id)
		}
		if err != nil {
			r.printf("remove: %v\n", err)
		}
	default:
		r.printf("unknown command %s, try :help\n", cmd)
	}
	return true
}

func (r *repl) attach(ctx context.Context, path string) {
	if path == "" {
		r.printf("usage: :attach <path>\n")
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		r.printf("attach: %v\n", err)
		return
	}

	file := domain.LocalFile{Name: filepath.Base(path), Size: int64(len(data)), Data: data}
	_, rejected := r.ctrl.Attachments().Attach(ctx, file)
	for _, rej := range rejected {
		r.printf("rejected %s: %v\n", rej.File.Name, rej.Err)
	}
}

func (r *repl) onEvent(ev service.Event) {
	switch ev.Kind {
	case service.EventMessage:
		if ev.Message.IsUser() {
			return
		}
		r.printf("\rassistant> %s\n", render.Message(ev.Message))
	case service.EventTyping:
		if ev.Typing {
			r.printf("\r(waiting for a reply...)\n")
		}
	case service.EventStatus:
		r.printf("\r[%s]\n", ev.Status)
	case service.EventAttachments:
		for _, a := range ev.Attachments {
			if a.Failed() {
				r.printf("\r%s\n", render.Attachment(a))
			}
		}
	}
}

func (r *repl) printf(format string, args ...any) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	fmt.Fprintf(r.out, format, args...)
}

func statusLine(st service.SessionState) string {
	model := "none"
	if st.Model != nil && st.Model.Usable() {
		model = st.Model.Provider + "/" + st.Model.LLMName()
	}
	return fmt.Sprintf("%s | status=%s session=%s model=%s messages=%d attachments=%d",
		st.Placeholder, st.Session.Status, st.Session.ID, model, len(st.Messages), len(st.Attachments))
}

func numbered(list []domain.AttachedFile) string {
	if len(list) == 0 {
		return render.Attachments(list)
	}
	lines := make([]string, len(list))
	for i, a := range list {
		lines[i] = fmt.Sprintf("%d. %s", i+1, render.Attachment(a))
	}
	return strings.Join(lines, "\n")
}

// resolveAttachment accepts a 1-based position from :files or a client id.
func resolveAttachment(list []domain.AttachedFile, arg string) (string, error) {
	if arg == "" {
		return "", fmt.Errorf("attachment number or id required")
	}
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(list) {
			return "", domain.ErrAttachmentNotFound
		}
		return list[n-1].ClientID, nil
	}
	for _, a := range list {
		if a.ClientID == arg {
			return a.ClientID, nil
		}
	}
	return "", domain.ErrAttachmentNotFound
}
