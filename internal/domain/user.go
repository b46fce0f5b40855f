package domain

// User is a registered subscriber. Students carry a group and subgroup,
// teachers carry the name key matched against lesson teachers.
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username,omitempty"`
	Name        string `json:"name"`
	Role        Role   `json:"role"`
	Status      Status `json:"status"`
	GroupID     int64  `json:"group_id,omitempty"`
	Group       *Group `json:"group,omitempty"`
	Subgroup    int    `json:"subgroup"`
	TeacherName string `json:"teacher_name,omitempty"`
	DailyNotify bool   `json:"daily_notify"`
	NotifyHour  int    `json:"notify_hour"`
}

// Profile is the identity data taken from the messaging platform.
type Profile struct {
	ID       int64
	Username string
	Name     string
}

// IsAdmin reports whether the user may run administrative commands.
func (u User) IsAdmin() bool {
	return u.Status == StatusAdmin
}

// IsTeacher reports whether lessons are resolved by teacher name.
func (u User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

// TeacherKey returns the normalized teacher name.
func (u User) TeacherKey() string {
	return TeacherKey(u.TeacherName)
}

// CheckRegistered returns ErrNotRegistered when the user cannot resolve a
// schedule yet.
func (u User) CheckRegistered() error {
	switch u.Role {
	case RoleTeacher:
		if u.TeacherKey() == "" {
			return ErrNotRegistered
		}
	case RoleStudent:
		if u.GroupID == 0 {
			return ErrNotRegistered
		}
	default:
		return ErrNotRegistered
	}
	return nil
}
