package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// StubFmaskScript mimics the Fmask launcher: it records its arguments next to
// the working directory and writes "<cwd name>_Fmask4.tif" into FMASK_DATA.
// Setting STUB_FMASK_EXIT makes it exit with that status without producing
// output; STUB_FMASK_SLEEP delays it.
const StubFmaskScript = `#!/bin/sh
if [ -n "$STUB_FMASK_SLEEP" ]; then
	sleep "$STUB_FMASK_SLEEP"
fi
if [ -n "$STUB_FMASK_EXIT" ]; then
	exit "$STUB_FMASK_EXIT"
fi
echo "$@" > fmask_args.txt
mkdir -p FMASK_DATA
printf 'mask' > "FMASK_DATA/$(basename "$PWD")_Fmask4.tif"
`

// WriteStubFmask writes StubFmaskScript to path as an executable.
func WriteStubFmask(t testing.TB, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for stub fmask: %v", err)
	}
	if err := os.WriteFile(path, []byte(StubFmaskScript), 0o755); err != nil {
		t.Fatalf("write stub fmask: %v", err)
	}
}
