package matclass

// SlotState describes the content of an expected texture slot.
type SlotState string

const (
	// SlotAbsent means the material does not declare the slot.
	SlotAbsent SlotState = "absent"
	// SlotNull means the slot is present but explicitly empty (a template awaiting content).
	SlotNull SlotState = "null"
	// SlotAssigned means the slot references a texture.
	SlotAssigned SlotState = "assigned"
)

// SlotStatus is the state of one expected slot.
type SlotStatus struct {
	Texture *TextureRef `json:"texture,omitempty" yaml:"texture,omitempty"` // Slot content when assigned
	Slot    string      `json:"slot" yaml:"slot"`                           // Slot name
	State   SlotState   `json:"state" yaml:"state"`                         // Slot state
}

// ExpectedSlots lists the texture slots a conforming material of family should populate.
// A nil family imposes no expectations.
func ExpectedSlots(family *ShaderFamily) []string {
	if family == nil {
		return []string{}
	}
	return append([]string{}, family.Textures...)
}

// CheckSlots reports the state of every expected slot of family on m.
func CheckSlots(m *Material, family *ShaderFamily) []SlotStatus {
	slots := ExpectedSlots(family)
	out := make([]SlotStatus, 0, len(slots))
	for _, slot := range slots {
		st := SlotStatus{Slot: slot, State: SlotAbsent}
		if ref, ok := m.Texture(slot); ok {
			if ref.IsNull() {
				st.State = SlotNull
			} else {
				r := ref
				st.State = SlotAssigned
				st.Texture = &r
			}
		}
		out = append(out, st)
	}
	return out
}
