package notification

import (
	"context"
	"log/slog"
)

const (
	// VariantDefault is an informational notice.
	VariantDefault = "default"
	// VariantDestructive marks a failure notice.
	VariantDestructive = "destructive"
)

// Notice is a short user-facing title and description.
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant"`
}

// Info builds a default notice.
func Info(title, description string) Notice {
	return Notice{Title: title, Description: description, Variant: VariantDefault}
}

// Failure builds a destructive notice.
func Failure(title, description string) Notice {
	return Notice{Title: title, Description: description, Variant: VariantDestructive}
}

// Notifier delivers notices to the user.
type Notifier interface {
	Notify(ctx context.Context, notice Notice) error
}

// LoggerNotifier writes notices to the structured logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Notify writes the notice to the structured logger.
func (n *LoggerNotifier) Notify(ctx context.Context, notice Notice) error {
	if n == nil || n.logger == nil {
		return nil
	}
	level := slog.LevelInfo
	if notice.Variant == VariantDestructive {
		level = slog.LevelWarn
	}
	n.logger.Log(ctx, level, "notification", "title", notice.Title, "description", notice.Description)
	return nil
}

// Fanout delivers each notice to every notifier and returns the first error.
type Fanout []Notifier

// Notify implements Notifier.
func (f Fanout) Notify(ctx context.Context, notice Notice) error {
	var first error
	for _, n := range f {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, notice); err != nil && first == nil {
			first = err
		}
	}
	return first
}
