// Package prompt builds the tutor's system prompt for one chat exchange.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dlh/dlh/utils/logging"

	"go.uber.org/zap"
)

const (
	knowledgeHeader = "## Additional Knowledge from DLH Admin"
	courseHeader    = "## Course-Specific Instructions"
	courseRedirect  = "If the student asks about something unrelated to this course, gently redirect them back to the course material."
)

// KnowledgeSource returns admin-supplied free text. An empty string means none is stored.
type KnowledgeSource interface {
	BotKnowledge(ctx context.Context) (string, error)
}

// CourseKey identifies an entry of the course-prompt table.
type CourseKey string

// CoursePrompts is the fixed course -> instruction table. Unknown keys are a no-op.
type CoursePrompts struct {
	byKey map[CourseKey]string
}

func NewCoursePrompts(entries map[string]string) (*CoursePrompts, error) {
	cp := &CoursePrompts{byKey: make(map[CourseKey]string, len(entries))}
	for k, v := range entries {
		key := strings.TrimSpace(k)
		text := strings.TrimSpace(v)
		if key == "" {
			return nil, errors.New("course prompt with empty key")
		}
		if text == "" {
			return nil, fmt.Errorf("course prompt %q has no instructions", key)
		}
		if _, dup := cp.byKey[CourseKey(key)]; dup {
			return nil, fmt.Errorf("duplicate course prompt %q", key)
		}
		cp.byKey[CourseKey(key)] = text
	}
	return cp, nil
}

// Lookup validates id against the table.
func (cp *CoursePrompts) Lookup(id string) (CourseKey, string, bool) {
	if cp == nil || id == "" {
		return "", "", false
	}
	key := CourseKey(strings.TrimSpace(id))
	text, ok := cp.byKey[key]
	return key, text, ok
}

func (cp *CoursePrompts) Len() int {
	if cp == nil {
		return 0
	}
	return len(cp.byKey)
}

// Step produces one optional block of the prompt. ok=false skips it.
type Step func(ctx context.Context, in Input) (block string, ok bool)

type Input struct {
	CourseID string
}

// Assembler applies its steps in order and joins the produced blocks.
type Assembler struct {
	steps []Step
}

// NewAssembler wires the fixed order: base prompt, admin knowledge, course instructions.
func NewAssembler(base string, knowledge KnowledgeSource, courses *CoursePrompts) *Assembler {
	return NewAssemblerWithSteps(
		BaseStep(base),
		KnowledgeStep(knowledge),
		CourseStep(courses),
	)
}

func NewAssemblerWithSteps(steps ...Step) *Assembler {
	return &Assembler{steps: steps}
}

func (a *Assembler) Build(ctx context.Context, courseID string) string {
	in := Input{CourseID: courseID}
	var blocks []string
	for _, step := range a.steps {
		if block, ok := step(ctx, in); ok {
			blocks = append(blocks, block)
		}
	}
	return strings.Join(blocks, "\n\n")
}

func BaseStep(base string) Step {
	base = strings.TrimSpace(base)
	return func(context.Context, Input) (string, bool) {
		return base, base != ""
	}
}

// KnowledgeStep never fails the exchange: lookup errors are logged and the block is skipped.
func KnowledgeStep(src KnowledgeSource) Step {
	return func(ctx context.Context, _ Input) (string, bool) {
		if src == nil {
			return "", false
		}
		text, err := src.BotKnowledge(ctx)
		if err != nil {
			logging.ErrorLogger.Error("bot knowledge lookup failed", zap.Error(err))
			return "", false
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return "", false
		}
		return knowledgeHeader + "\n" + text, true
	}
}

func CourseStep(courses *CoursePrompts) Step {
	return func(_ context.Context, in Input) (string, bool) {
		_, text, ok := courses.Lookup(in.CourseID)
		if !ok {
			return "", false
		}
		return courseHeader + "\n" + text + "\n" + courseRedirect, true
	}
}
