package domain

import (
	"context"
	"iter"
)

// TransitionNode plays a scene transition.
type TransitionNode struct {
	Base
	Transition TransitionSpec
}

func (n *TransitionNode) Kind() Kind { return KindTransition }

func (n *TransitionNode) Process(pc ProcessContext) iter.Seq[Instruction] {
	player := pc.Collaborators().Transitions
	if player == nil {
		return missingCollaborator(pc, n, "transitions")
	}
	spec := n.Transition
	return single(Await(func(ctx context.Context) error {
		return player.PlayTransition(ctx, spec)
	}))
}

// CharacterActionNode stages a character (enter, exit, expression change).
type CharacterActionNode struct {
	Base
	Action CharacterAction
}

func (n *CharacterActionNode) Kind() Kind { return KindCharacterAction }

func (n *CharacterActionNode) Process(pc ProcessContext) iter.Seq[Instruction] {
	director := pc.Collaborators().Characters
	if director == nil {
		return missingCollaborator(pc, n, "characters")
	}
	action := n.Action
	return single(Await(func(ctx context.Context) error {
		return director.PlayCharacterAction(ctx, action)
	}))
}

// BackgroundNode swaps the background.
type BackgroundNode struct {
	Base
	Background BackgroundSpec
}

func (n *BackgroundNode) Kind() Kind { return KindBackground }

func (n *BackgroundNode) Process(pc ProcessContext) iter.Seq[Instruction] {
	setter := pc.Collaborators().Backgrounds
	if setter == nil {
		return missingCollaborator(pc, n, "backgrounds")
	}
	spec := n.Background
	return single(Await(func(ctx context.Context) error {
		return setter.SetBackground(ctx, spec)
	}))
}

// CameraNode moves the camera.
type CameraNode struct {
	Base
	Action CameraAction
}

func (n *CameraNode) Kind() Kind { return KindCamera }

func (n *CameraNode) Process(pc ProcessContext) iter.Seq[Instruction] {
	camera := pc.Collaborators().Camera
	if camera == nil {
		return missingCollaborator(pc, n, "camera")
	}
	action := n.Action
	return single(Await(func(ctx context.Context) error {
		return camera.PlayCameraAction(ctx, action)
	}))
}

// ScreenEffectNode applies a screen post effect.
type ScreenEffectNode struct {
	Base
	Effect ScreenEffect
}

func (n *ScreenEffectNode) Kind() Kind { return KindScreenEffect }

func (n *ScreenEffectNode) Process(pc ProcessContext) iter.Seq[Instruction] {
	screen := pc.Collaborators().Screen
	if screen == nil {
		return missingCollaborator(pc, n, "screen")
	}
	effect := n.Effect
	return single(Await(func(ctx context.Context) error {
		return screen.PlayScreenEffect(ctx, effect)
	}))
}

// EventNode raises a fire-and-forget request on the event bus (audio cues, game events).
type EventNode struct {
	Base
	Event EventRequest
}

func (n *EventNode) Kind() Kind { return KindEvent }

func (n *EventNode) Process(pc ProcessContext) iter.Seq[Instruction] {
	bus := pc.Collaborators().Events
	if bus == nil {
		return missingCollaborator(pc, n, "events")
	}
	req := n.Event
	return single(Await(func(ctx context.Context) error {
		bus.Raise(ctx, req)
		return nil
	}))
}
