package descriptor

import (
	"sort"
	"strconv"
	"strings"
)

// sortIDs orders identifiers by their numeric suffix so c-10 sorts after c-2.
func sortIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		return idNum(ids[i]) < idNum(ids[j])
	})
}

func idNum(id string) int {
	if i := strings.IndexByte(id, '-'); i >= 0 {
		if n, err := strconv.Atoi(id[i+1:]); err == nil {
			return n
		}
	}
	return 0
}
