package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"dasa.cc/primeview/config"
	"dasa.cc/primeview/geom"
	"dasa.cc/primeview/scene"
	"dasa.cc/primeview/trigram"
	"dasa.cc/primeview/viewer"
)

func newReplCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Drive a headless viewer from a console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.repl(cmd.Context())
		},
	}
}

type replCmd struct {
	usage string
	run   func(ctx context.Context, r *repl, args []string) error
}

var errQuit = errors.New("quit")

// errUsage is returned by commands given the wrong arguments.
var errUsage = errors.New("usage")

var replCmds map[string]replCmd

func init() {
	replCmds = map[string]replCmd{
		"load":     {"load <selector>", replLoad},
		"reload":   {"reload", replReload},
		"list":     {"list", replList},
		"next":     {"next", func(ctx context.Context, r *repl, _ []string) error { return r.sess.Navigate(ctx, 1) }},
		"prev":     {"prev", func(ctx context.Context, r *repl, _ []string) error { return r.sess.Navigate(ctx, -1) }},
		"select":   {"select <element>", replSelect},
		"click":    {"click <x> <y>", replClick},
		"clear":    {"clear", func(_ context.Context, r *repl, _ []string) error { r.sess.ClearSelection(); return nil }},
		"blank":    {"blank", func(_ context.Context, r *repl, _ []string) error { r.sess.ClearDisplay(); return nil }},
		"scale":    {"scale <pixels per unit>", replScale},
		"center":   {"center <x,y>", replCenter},
		"zoom":     {"zoom <rate>", replZoom},
		"pan":      {"pan <dx> <dy>", replPan},
		"toggle":   {"toggle <lines|points|highlight|hover>", replToggle},
		"reset":    {"reset", func(_ context.Context, r *repl, _ []string) error { r.sess.ResetView(); return nil }},
		"status":   {"status", replStatus},
		"labels":   {"labels", replLabels},
		"snapshot": {"snapshot <file.png>", replSnapshot},
		"help":     {"help", replHelp},
		"quit":     {"quit", func(context.Context, *repl, []string) error { return errQuit }},
	}
}

// repl runs console commands against one session.
type repl struct {
	a    *app
	sess *viewer.Session
	out  io.Writer

	names     trigram.Index
	selectors []string
}

func (a *app) newRepl(ctx context.Context, out io.Writer) (*repl, error) {
	sess, err := a.session(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	r := &repl{a: a, sess: sess, out: out}
	for name := range replCmds {
		r.names.Add(name)
	}
	r.refresh(ctx)
	return r, nil
}

// refresh caches the source's selectors for completion.
func (r *repl) refresh(ctx context.Context) {
	if ss, err := r.sess.Loader.List(ctx); err == nil {
		r.selectors = ss
	}
}

// exec runs one command line and drains the frames it scheduled.
func (r *repl) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, ok := replCmds[fields[0]]
	if !ok {
		if m := r.names.Match(fields[0], 0.33); len(m) > 0 {
			return fmt.Errorf("unknown command %q, did you mean %q?", fields[0], m[0].Name)
		}
		return fmt.Errorf("unknown command %q, try help", fields[0])
	}
	err := cmd.run(ctx, r, fields[1:])
	for r.sess.Pending() {
		r.sess.Frame()
	}
	if errors.Is(err, errUsage) {
		return fmt.Errorf("usage: %s", cmd.usage)
	}
	return err
}

// Do completes command names, and selectors after load.
func (r *repl) Do(line []rune, pos int) (newLine [][]rune, length int) {
	ln := string(line[:pos])
	var words []string
	word := ln
	if i := strings.LastIndexByte(ln, ' '); i >= 0 {
		words, word = strings.Fields(ln[:i]), ln[i+1:]
	}
	var candidates []string
	switch {
	case len(words) == 0:
		for name := range replCmds {
			candidates = append(candidates, name)
		}
	case len(words) == 1 && words[0] == "load":
		candidates = r.selectors
	case len(words) == 1 && words[0] == "toggle":
		for l := scene.Layer(0); l < scene.NumLayers; l++ {
			candidates = append(candidates, l.String())
		}
	}
	sort.Strings(candidates)
	for _, c := range candidates {
		if strings.HasPrefix(c, word) {
			newLine = append(newLine, []rune(strings.TrimPrefix(c, word)+" "))
		}
	}
	return newLine, len([]rune(word))
}

func (a *app) repl(ctx context.Context) error {
	r, err := a.newRepl(ctx, nil)
	if err != nil {
		return err
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "primeview> ",
		HistoryFile:       filepath.Join(os.TempDir(), "primeview.history"),
		AutoComplete:      r,
		InterruptPrompt:   "^C",
		EOFPrompt:         "quit",
		HistorySearchFold: true,
	})
	if err != nil {
		return err
	}
	defer rl.Close()
	r.out = rl.Stdout()

	a.serveMetrics(ctx)
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return nil
			}
			continue
		} else if err == io.EOF {
			return nil
		}
		switch err := r.exec(ctx, line); {
		case errors.Is(err, errQuit):
			return nil
		case err != nil:
			fmt.Fprintln(rl.Stderr(), err)
		}
	}
}

func replLoad(ctx context.Context, r *repl, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	return r.sess.Load(ctx, args[0])
}

func replReload(ctx context.Context, r *repl, _ []string) error {
	return r.sess.Reload(ctx, r.sess.Selector())
}

func replList(ctx context.Context, r *repl, _ []string) error {
	r.refresh(ctx)
	for _, s := range r.selectors {
		mark := " "
		if s == r.sess.Selector() {
			mark = "*"
		}
		fmt.Fprintf(r.out, "%s %s\n", mark, s)
	}
	return nil
}

func replSelect(_ context.Context, r *repl, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	i, err := strconv.Atoi(args[0])
	if err != nil {
		return errUsage
	}
	ds := r.sess.Dataset()
	if ds == nil || i < 0 || i >= ds.Len() {
		return fmt.Errorf("no element %d", i)
	}
	r.sess.OnElementActivated(i)
	return nil
}

func replClick(_ context.Context, r *repl, args []string) error {
	xy, err := floats(args, 2)
	if err != nil {
		return err
	}
	p := geom.Pt(xy[0], xy[1])
	i, ok := r.sess.ElementAt(p)
	if !ok {
		fmt.Fprintf(r.out, "nothing at %v\n", p)
		return nil
	}
	r.sess.OnElementActivated(i)
	fmt.Fprintf(r.out, "element %d\n", i)
	return nil
}

func replScale(_ context.Context, r *repl, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	v, ok := config.ParseScale(args[0])
	if !ok {
		return errUsage
	}
	r.sess.SetScale(v)
	return nil
}

func replCenter(_ context.Context, r *repl, args []string) error {
	p, ok := config.ParseCenter(strings.Join(args, " "))
	if !ok {
		return errUsage
	}
	r.sess.SetCenter(p)
	return nil
}

func replZoom(_ context.Context, r *repl, args []string) error {
	v, err := floats(args, 1)
	if err != nil || !(v[0] > 0) {
		return errUsage
	}
	r.sess.Camera.Zoom(r.sess.Camera.Viewport().Scale(0.5), v[0])
	return nil
}

func replPan(_ context.Context, r *repl, args []string) error {
	d, err := floats(args, 2)
	if err != nil {
		return err
	}
	r.sess.Camera.Translate(geom.Pt(d[0], d[1]))
	return nil
}

func replToggle(_ context.Context, r *repl, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	l, err := scene.ParseLayer(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "%s visible: %v\n", l, r.sess.ToggleLayer(l))
	return nil
}

func replStatus(_ context.Context, r *repl, _ []string) error {
	for _, l := range statusLines(r.sess.Status(), "") {
		fmt.Fprintln(r.out, l)
	}
	return nil
}

func replLabels(_ context.Context, r *repl, _ []string) error {
	lb := r.sess.Labels
	fmt.Fprintf(r.out, "step %d\nx %v\ny %v\n", lb.Step, lb.X, lb.Y)
	return nil
}

func replSnapshot(_ context.Context, r *repl, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	return writePNG(args[0], renderAll(r.sess))
}

func replHelp(_ context.Context, r *repl, _ []string) error {
	var usages []string
	for _, c := range replCmds {
		usages = append(usages, c.usage)
	}
	sort.Strings(usages)
	for _, u := range usages {
		fmt.Fprintln(r.out, " ", u)
	}
	return nil
}

// floats parses exactly n numbers from args.
func floats(args []string, n int) ([]float64, error) {
	if len(args) != n {
		return nil, errUsage
	}
	vs := make([]float64, n)
	for i, s := range args {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errUsage
		}
		vs[i] = v
	}
	return vs, nil
}
