package manifests

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	manifestNoConstraint = "manifest_infos_manifest_no_key"
	manifestNoColumn     = "manifest_infos.manifest_no"
	suffixWidth          = 3
)

// MonthPrefix is the YYYYMM part every manifest number of that month shares.
func MonthPrefix(now time.Time) string {
	return now.Format("200601")
}

// NextManifestNo allocates the number following the highest of existing that
// carries the month prefix of now. Numbers from other months are ignored; a
// month without numbers starts at 001. Suffixes past 999 widen.
func NextManifestNo(now time.Time, existing ...string) string {
	prefix := MonthPrefix(now)

	next := 1
	for _, no := range existing {
		if !strings.HasPrefix(no, prefix) {
			continue
		}
		seq, err := strconv.Atoi(no[len(prefix):])
		if err != nil || seq < 0 {
			continue
		}
		if seq+1 > next {
			next = seq + 1
		}
	}
	return fmt.Sprintf("%s%0*d", prefix, suffixWidth, next)
}
