package playbook_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/NofaBC/TechSupport-AI/pkg/service/playbook"
	"github.com/m-mizutani/gt"
)

const validPlaybookTOML = `
[metadata]
id = "printer-jam"
name = "Printer jam recovery"
version = "1"

[triggers]
products = ["printer-z"]
keywords = ["paper jam", "stuck"]

[[steps]]
id = "open-tray"
title = "Open the paper tray"
instruction = "Open tray {{tray}} and remove any visible paper."
next_on_success = "close-tray"

[[steps]]
id = "close-tray"
title = "Close the tray"
instruction = "Close the tray firmly until it clicks."

[escalation]
default_message = "Connecting you with a technician."

[variables]
tray = "2"
`

func writePlaybook(t *testing.T, dir, name, content string) {
	t.Helper()
	gt.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	writePlaybook(t, dir, "printer.toml", validPlaybookTOML)

	p, warnings, err := playbook.LoadFile(filepath.Join(dir, "printer.toml"))
	gt.NoError(t, err)
	gt.Array(t, warnings).Length(0)
	gt.Equal(t, p.Metadata.ID, "printer-jam")
	gt.Array(t, p.Steps).Length(2)
	gt.Equal(t, p.Variables["tray"], "2")
}

func TestLoadFileWarnsOnMissingVersion(t *testing.T) {
	dir := t.TempDir()
	writePlaybook(t, dir, "min.toml", `
[metadata]
id = "minimal"
name = "Minimal"

[[steps]]
id = "only"
title = "Only step"
instruction = "Do the thing."
`)

	_, warnings, err := playbook.LoadFile(filepath.Join(dir, "min.toml"))
	gt.NoError(t, err)
	gt.Array(t, warnings).Length(2)
}

func TestLoadFileRejectsDanglingReference(t *testing.T) {
	dir := t.TempDir()
	writePlaybook(t, dir, "bad.toml", `
[metadata]
id = "broken"
name = "Broken"

[[steps]]
id = "s1"
title = "Step"
instruction = "Do."
next_on_success = "nowhere"
`)

	_, _, err := playbook.LoadFile(filepath.Join(dir, "bad.toml"))
	gt.Error(t, err)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writePlaybook(t, dir, "a.toml", validPlaybookTOML)
	writePlaybook(t, dir, "b.toml", `
[metadata]
id = "second"
name = "Second"
version = "1"

[[steps]]
id = "only"
title = "Only"
instruction = "Do."

[escalation]
default_message = "Escalating."
`)
	writePlaybook(t, dir, "notes.txt", "not a playbook")

	playbooks, warnings, err := playbook.LoadDir(dir)
	gt.NoError(t, err)
	gt.Array(t, playbooks).Length(2)
	gt.Array(t, warnings).Length(0)
}

func TestLoadDirRejectsDuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	writePlaybook(t, dir, "a.toml", validPlaybookTOML)
	writePlaybook(t, dir, "b.toml", validPlaybookTOML)

	_, _, err := playbook.LoadDir(dir)
	gt.Error(t, err)
}
