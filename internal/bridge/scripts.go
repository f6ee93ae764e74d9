package bridge

import (
	"fmt"
	"strings"
)

// quote escapes a string for use as an AppleScript string literal.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// quoteList renders a slice as an AppleScript list literal.
func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = quote(item)
	}
	return "{" + strings.Join(quoted, ", ") + "}"
}

func scriptEnsureRunning() string {
	return `tell application "Photos"
	if not running then
		launch
		delay 2
	end if
	return "ok"
end tell`
}

func scriptGetKeywords(itemID string) string {
	return fmt.Sprintf(`tell application "Photos"
	set AppleScript's text item delimiters to linefeed
	set kws to keywords of media item id %s
	if kws is missing value then return ""
	return kws as text
end tell`, quote(itemID))
}

func scriptSetKeywords(itemID string, keywords []string) string {
	return fmt.Sprintf(`tell application "Photos"
	set keywords of media item id %s to %s
end tell`, quote(itemID), quoteList(keywords))
}

func scriptAddKeywords(itemID string, keywords []string) string {
	return fmt.Sprintf(`tell application "Photos"
	set theItem to media item id %s
	set current to keywords of theItem
	if current is missing value then set current to {}
	repeat with kw in %s
		if current does not contain (kw as text) then set end of current to (kw as text)
	end repeat
	set keywords of theItem to current
end tell`, quote(itemID), quoteList(keywords))
}

func scriptRemoveKeywords(itemID string, keywords []string) string {
	return fmt.Sprintf(`tell application "Photos"
	set theItem to media item id %s
	set current to keywords of theItem
	if current is missing value then set current to {}
	set kept to {}
	repeat with kw in current
		if %s does not contain (kw as text) then set end of kept to (kw as text)
	end repeat
	set keywords of theItem to kept
end tell`, quote(itemID), quoteList(keywords))
}

func scriptAddToAlbum(albumID, itemID string) string {
	return fmt.Sprintf(`tell application "Photos"
	add {media item id %s} to album id %s
end tell`, quote(itemID), quote(albumID))
}

func scriptRemoveFromAlbum(albumID, itemID string) string {
	return fmt.Sprintf(`tell application "Photos"
	remove {media item id %s} from album id %s
end tell`, quote(itemID), quote(albumID))
}

func scriptCreateAlbum(name string) string {
	return fmt.Sprintf(`tell application "Photos"
	set newAlbum to make new album named %s
	return id of newAlbum
end tell`, quote(name))
}

func scriptRenameAlbum(albumID, title string) string {
	return fmt.Sprintf(`tell application "Photos"
	set name of album id %s to %s
end tell`, quote(albumID), quote(title))
}

func scriptDeleteAlbum(albumID string) string {
	return fmt.Sprintf(`tell application "Photos"
	delete album id %s
end tell`, quote(albumID))
}
