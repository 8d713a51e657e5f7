package keymap

// Command is a semantic action produced from input
type Command int

const (
	None Command = iota // Unrecognized key

	// Bindable commands, configurable through the keymap
	NavigateUp
	NavigateDown
	NavigateLeft
	NavigateRight
	MarkDone
	RemoveItem
	NewStickyNote
	NewTodoItem
	NewNote
	EditCurrentItem
	RemoveStickyNote
	SaveState
	Exit

	// Structural commands, produced by the input state machine only
	Activate // run the current item's command
	Submit   // finish a text edit
	Cancel   // abandon an edit or confirmation
	Confirm  // accept a confirmation prompt
)

// Bindable lists the commands every keymap must bind, in display order
var Bindable = []Command{
	NavigateUp,
	NavigateDown,
	NavigateLeft,
	NavigateRight,
	MarkDone,
	RemoveItem,
	NewStickyNote,
	NewTodoItem,
	NewNote,
	EditCurrentItem,
	RemoveStickyNote,
	SaveState,
	Exit,
}

var commandNames = map[Command]string{
	None:             "none",
	NavigateUp:       "navigateUp",
	NavigateDown:     "navigateDown",
	NavigateLeft:     "navigateLeft",
	NavigateRight:    "navigateRight",
	MarkDone:         "markDone",
	RemoveItem:       "removeItem",
	NewStickyNote:    "newStickyNote",
	NewTodoItem:      "newTodoItem",
	NewNote:          "newNote",
	EditCurrentItem:  "editCurrentItem",
	RemoveStickyNote: "removeStickyNote",
	SaveState:        "saveState",
	Exit:             "exit",
	Activate:         "activate",
	Submit:           "submit",
	Cancel:           "cancel",
	Confirm:          "confirm",
}

var commandHelp = map[Command]string{
	NavigateUp:       "up",
	NavigateDown:     "down",
	NavigateLeft:     "prev note",
	NavigateRight:    "next note",
	MarkDone:         "done",
	RemoveItem:       "remove",
	NewStickyNote:    "new sticky",
	NewTodoItem:      "new todo",
	NewNote:          "new note",
	EditCurrentItem:  "edit",
	RemoveStickyNote: "remove sticky",
	SaveState:        "save",
	Exit:             "quit",
	Activate:         "run",
}

// String returns the config name of the command
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// Help returns a short description for key hints
func (c Command) Help() string {
	return commandHelp[c]
}

// IsBindable reports whether the command may appear in a keymap
func (c Command) IsBindable() bool {
	return c >= NavigateUp && c <= Exit
}

// ParseCommand looks up a bindable command by its config name
func ParseCommand(name string) (Command, bool) {
	for _, c := range Bindable {
		if commandNames[c] == name {
			return c, true
		}
	}
	return None, false
}
