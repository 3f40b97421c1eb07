package scene

import "encoding/json"

// Action names a scene command variant.
type Action string

const (
	ActionAddObject    Action = "addObject"
	ActionUpdateObject Action = "updateObject"
	ActionRemoveObject Action = "removeObject"
	ActionAddLight     Action = "addLight"
	ActionUpdateLight  Action = "updateLight"
	ActionRemoveLight  Action = "removeLight"
	ActionSetCamera    Action = "setCamera"
	ActionSetConfig    Action = "setConfig"
	ActionClearScene   Action = "clearScene"
	ActionResetScene   Action = "resetScene"
)

// Command is one scene mutation. Which payload field is meaningful depends
// on Action; the dispatcher ignores actions it does not recognize, so a
// Command with an unknown Action is harmless to apply.
type Command struct {
	Action Action  `json:"action"`
	ID     string  `json:"id,omitempty"`
	Object *Object `json:"object,omitempty"`
	Light  *Light  `json:"light,omitempty"`
	Camera *Camera `json:"camera,omitempty"`
	Config *Config `json:"config,omitempty"`
}

// TargetID resolves the id a command addresses, accepting it either at the
// top level or inside the payload (models emit both shapes).
func (c Command) TargetID() string {
	if c.ID != "" {
		return c.ID
	}
	if c.Object != nil {
		return c.Object.ID
	}
	if c.Light != nil {
		return c.Light.ID
	}
	return ""
}

// ParseCommand decodes one raw JSON object into a Command. ok is false when
// the JSON does not fit the command shapes or names no action; such input is
// dropped, never an error.
func ParseCommand(raw []byte) (Command, bool) {
	var c Command
	if err := json.Unmarshal(raw, &c); err != nil {
		return Command{}, false
	}
	if c.Action == "" {
		return Command{}, false
	}
	return c, true
}

// ParseCommands decodes a batch of raw JSON objects, dropping any that do
// not parse.
func ParseCommands(raws []json.RawMessage) []Command {
	var out []Command
	for _, raw := range raws {
		if cmd, ok := ParseCommand(raw); ok {
			out = append(out, cmd)
		}
	}
	return out
}
