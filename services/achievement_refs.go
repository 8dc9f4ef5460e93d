package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// SubmissionSize is the number of achievements in a submission and the
// length of every daily word.
const SubmissionSize = 5

var (
	bareID         = regexp.MustCompile(`^\d+$`)
	achievementURL = regexp.MustCompile(`(?i)retroachievements\.org/achievement/(\d+)`)
)

// ExtractAchievementID accepts a positive integer or a RetroAchievements
// achievement URL such as https://retroachievements.org/achievement/123456.
func ExtractAchievementID(ref string) (int64, bool) {
	ref = strings.TrimSpace(ref)

	digits := ""
	if bareID.MatchString(ref) {
		digits = ref
	} else if m := achievementURL.FindStringSubmatch(ref); m != nil {
		digits = m[1]
	} else {
		return 0, false
	}

	id, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ParseAchievementRefs extracts one id per reference. Errors are reported per
// position (1-based, as participants number them) and ids is nil whenever any
// error is returned.
func ParseAchievementRefs(refs []string) (ids []int64, errs []string) {
	if len(refs) != SubmissionSize {
		return nil, []string{fmt.Sprintf("You must submit exactly %d achievements (got %d).", SubmissionSize, len(refs))}
	}

	ids = make([]int64, 0, len(refs))
	for i, ref := range refs {
		id, ok := ExtractAchievementID(ref)
		if !ok {
			errs = append(errs, fmt.Sprintf("Achievement %d: %q is not a valid RetroAchievements URL or achievement ID",
				i+1, strings.TrimSpace(ref)))
			continue
		}
		ids = append(ids, id)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return ids, nil
}
