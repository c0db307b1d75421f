package domain

import (
	"context"
	"time"
)

// Line is a resolved, formatted line of dialogue handed to the presenter.
type Line struct {
	NodeID  string `json:"node_id"`
	Speaker string `json:"speaker,omitempty"`
	Text    string `json:"text"`
}

// PresentedChoice is one selectable option as published to the presenter.
// ID is the option's position in the choice node and is what SelectChoice expects.
type PresentedChoice struct {
	ID       int    `json:"id"`
	Text     string `json:"text"`
	TargetID string `json:"target_id,omitempty"`
}

// TransitionSpec describes a scene transition (fade, wipe, ...).
type TransitionSpec struct {
	Effect   string        `json:"effect" yaml:"effect" mapstructure:"effect"`
	Duration time.Duration `json:"duration,omitempty" yaml:"duration,omitempty" mapstructure:"duration"`
	Color    string        `json:"color,omitempty" yaml:"color,omitempty" mapstructure:"color"`
}

// CharacterAction describes a portrait/character change on stage.
type CharacterAction struct {
	Character  string        `json:"character" yaml:"character" mapstructure:"character"`
	Action     string        `json:"action" yaml:"action" mapstructure:"action"` // enter, exit, move, emote
	Expression string        `json:"expression,omitempty" yaml:"expression,omitempty" mapstructure:"expression"`
	Position   string        `json:"position,omitempty" yaml:"position,omitempty" mapstructure:"position"`
	Duration   time.Duration `json:"duration,omitempty" yaml:"duration,omitempty" mapstructure:"duration"`
}

// BackgroundSpec describes a background swap.
type BackgroundSpec struct {
	Image    string        `json:"image" yaml:"image" mapstructure:"image"`
	Fade     time.Duration `json:"fade,omitempty" yaml:"fade,omitempty" mapstructure:"fade"`
	Position string        `json:"position,omitempty" yaml:"position,omitempty" mapstructure:"position"`
}

// CameraAction describes a camera motion (shake, zoom, pan).
type CameraAction struct {
	Action    string        `json:"action" yaml:"action" mapstructure:"action"`
	Target    string        `json:"target,omitempty" yaml:"target,omitempty" mapstructure:"target"`
	Intensity float64       `json:"intensity,omitempty" yaml:"intensity,omitempty" mapstructure:"intensity"`
	Duration  time.Duration `json:"duration,omitempty" yaml:"duration,omitempty" mapstructure:"duration"`
}

// ScreenEffect describes a full-screen post effect (flash, tint, blur).
type ScreenEffect struct {
	Effect    string        `json:"effect" yaml:"effect" mapstructure:"effect"`
	Color     string        `json:"color,omitempty" yaml:"color,omitempty" mapstructure:"color"`
	Intensity float64       `json:"intensity,omitempty" yaml:"intensity,omitempty" mapstructure:"intensity"`
	Duration  time.Duration `json:"duration,omitempty" yaml:"duration,omitempty" mapstructure:"duration"`
}

// EventRequest is a fire-and-forget request for the audio/event bus.
type EventRequest struct {
	Name   string         `json:"name" yaml:"name" mapstructure:"name"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty" mapstructure:"params"`
}

// Presenter renders dialogue text and choices.
// Each call returns once the visual effect has completed (or ctx is cancelled).
type Presenter interface {
	ShowText(ctx context.Context, line Line) error
	ShowChoices(ctx context.Context, nodeID string, choices []PresentedChoice) error
}

// Localizer resolves localization keys. It must be free of side effects.
type Localizer interface {
	GetText(key string) (string, bool)
}

// EventBus receives fire-and-forget requests (audio cues, game events).
type EventBus interface {
	Raise(ctx context.Context, req EventRequest)
}

// TransitionPlayer plays scene transitions.
type TransitionPlayer interface {
	PlayTransition(ctx context.Context, spec TransitionSpec) error
}

// CharacterDirector stages characters and portraits.
type CharacterDirector interface {
	PlayCharacterAction(ctx context.Context, action CharacterAction) error
}

// BackgroundSetter swaps backgrounds.
type BackgroundSetter interface {
	SetBackground(ctx context.Context, spec BackgroundSpec) error
}

// CameraController moves the camera.
type CameraController interface {
	PlayCameraAction(ctx context.Context, action CameraAction) error
}

// ScreenEffector applies screen post effects.
type ScreenEffector interface {
	PlayScreenEffect(ctx context.Context, effect ScreenEffect) error
}

// Collaborators bundles the outward interfaces node processing may call.
// Any of them may be nil; nodes that need a missing collaborator log a warning
// and complete as a no-op.
type Collaborators struct {
	Presenter   Presenter
	Localizer   Localizer
	Events      EventBus
	Transitions TransitionPlayer
	Characters  CharacterDirector
	Backgrounds BackgroundSetter
	Camera      CameraController
	Screen      ScreenEffector
}
