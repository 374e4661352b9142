package app

import (
	"fmt"
	"strings"

	"github.com/justyntemme/cryptum/internal/tree"
)

// Intent is a user-triggered action. The set is closed; every intent is
// handled by Coordinator.Dispatch.
type Intent interface {
	intent()
}

type (
	// NewDocument clears the buffer and forgets the current file.
	NewDocument struct{}
	// ClearEditor clears the buffer but keeps the current file.
	ClearEditor struct{}
	OpenFolder  struct{ Path string }
	OpenFile    struct{ Path string }
	SaveFile    struct{}
	SaveAs      struct{ Path string }
	// SaveAsRequest asks the front end for a save location.
	SaveAsRequest struct{}
	// OpenFileRequest and OpenFolderRequest ask the front end for a path.
	OpenFileRequest   struct{}
	OpenFolderRequest struct{}
	// OpenResponse, FolderResponse and SaveAsResponse carry an accepted
	// dialog result.
	OpenResponse          struct{ Path string }
	FolderResponse        struct{ Path string }
	SaveAsResponse        struct{ Path string }
	DeleteSelection       struct{}
	NavigateUp            struct{}
	// RefreshFolder re-reads Path, or the whole tree when Path is empty.
	RefreshFolder         struct{ Path string }
	ToggleHiddenFiles     struct{}
	OpenInExternalBrowser struct{}
	Select                struct{ Node tree.NodeID }
	Expand                struct{ Node tree.NodeID }
	Collapse              struct{ Node tree.NodeID }
	SetSetting            struct{ Key, Value string }
	ToggleTheme           struct{}
	CopyPath              struct{}
	QuickOpen             struct{ Query string }
	// InsertText and MoveCursor are edits made by a front end without its
	// own text widget.
	InsertText struct{ Text string }
	MoveCursor struct{ Offset int }
)

func (NewDocument) intent()           {}
func (ClearEditor) intent()           {}
func (OpenFolder) intent()            {}
func (OpenFile) intent()              {}
func (SaveFile) intent()              {}
func (SaveAs) intent()                {}
func (SaveAsRequest) intent()         {}
func (OpenFileRequest) intent()       {}
func (OpenFolderRequest) intent()     {}
func (OpenResponse) intent()          {}
func (FolderResponse) intent()        {}
func (SaveAsResponse) intent()        {}
func (DeleteSelection) intent()       {}
func (NavigateUp) intent()            {}
func (RefreshFolder) intent()         {}
func (ToggleHiddenFiles) intent()     {}
func (OpenInExternalBrowser) intent() {}
func (Select) intent()                {}
func (Expand) intent()                {}
func (Collapse) intent()              {}
func (SetSetting) intent()            {}
func (ToggleTheme) intent()           {}
func (CopyPath) intent()              {}
func (QuickOpen) intent()             {}
func (InsertText) intent()            {}
func (MoveCursor) intent()            {}

// IntentName returns the type name of an intent for logs.
func IntentName(i Intent) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", i), "app.")
}
