package confirm

// Tone selects how the confirm action is presented.
type Tone string

const (
	ToneDanger  Tone = "danger"
	TonePrimary Tone = "primary"
)

const (
	DefaultTitle        = "Are you sure?"
	DefaultConfirmLabel = "Yes"
	DefaultCancelLabel  = "Cancel"
)

// Options describes a single yes/no question. Zero values fall back to the
// defaults via WithDefaults.
type Options struct {
	Title        string
	Description  string
	ConfirmLabel string
	CancelLabel  string
	Tone         Tone
}

// WithDefaults fills every empty field. Description stays empty.
func (o Options) WithDefaults() Options {
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.ConfirmLabel == "" {
		o.ConfirmLabel = DefaultConfirmLabel
	}
	if o.CancelLabel == "" {
		o.CancelLabel = DefaultCancelLabel
	}
	if o.Tone != TonePrimary {
		o.Tone = ToneDanger
	}
	return o
}

// Prompt is what a surface renders: the active options and whether the
// dialog is visible.
type Prompt struct {
	Options
	Open bool
}

// MakeAdmin is the question asked before promoting a user.
func MakeAdmin() Options {
	return Options{
		Title:        "Make Admin?",
		Description:  "Are you sure you want to make an admin?",
		ConfirmLabel: "Yes, Make Admin",
		CancelLabel:  "Cancel",
		Tone:         TonePrimary,
	}
}

// RemoveAdmin is the question asked before demoting an admin.
func RemoveAdmin() Options {
	return Options{
		Title:        "Remove Admin?",
		Description:  "Are you sure you want to remove from admin role?",
		ConfirmLabel: "Yes, Remove",
		CancelLabel:  "Cancel",
		Tone:         ToneDanger,
	}
}

// DeleteUser is the question asked before deleting username.
func DeleteUser(username string) Options {
	return Options{
		Title:        "Delete User",
		Description:  "Delete " + username + "? This action cannot be undone.",
		ConfirmLabel: "Delete",
		CancelLabel:  "Cancel",
		Tone:         ToneDanger,
	}
}
