package session

import "strconv"

// Key derives the activity-store key for a user's session. Keying by user
// rather than by session token means every client of the same account
// shares one last-activity timestamp, which is what lets activity in one
// client clear the warning in another.
func Key(userID uint) string {
	return "user:" + strconv.FormatUint(uint64(userID), 10)
}
