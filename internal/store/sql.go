package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"asu_schedule_bot/internal/domain"
)

// Dialect names a SQL backend; the value doubles as the database/sql driver name.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

func init() {
	sqlx.BindDriver(string(DialectSQLite), sqlx.QUESTION)
}

// openSQL is overridable for tests.
var openSQL = sqlx.Open

var _ Store = (*SQLStore)(nil)

// SQLStore implements Store on SQLite or PostgreSQL. Queries are written with
// "?" placeholders and rebound for the active driver.
type SQLStore struct {
	db      *sqlx.DB
	dialect Dialect
}

// OpenSQL opens and pings a SQL database. SQLite is limited to one
// connection so writers never contend for the file lock.
func OpenSQL(ctx context.Context, dialect Dialect, dsn string) (*SQLStore, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%s dsn is required", dialect)
	}
	if dialect != DialectSQLite && dialect != DialectPostgres {
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}

	if dialect == DialectSQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := openSQL(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}

	if dialect == DialectSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}

	return &SQLStore{db: db, dialect: dialect}, nil
}

// sqliteDSN enables foreign keys on every connection the pool opens.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// EnsureSchema creates tables and indexes when missing.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	for i, stmt := range schema(s.dialect) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}

	return nil
}

func schema(d Dialect) []string {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if d == DialectPostgres {
		serial = "BIGSERIAL PRIMARY KEY"
	}

	return []string{
		`CREATE TABLE IF NOT EXISTS student_groups (
			id ` + serial + `,
			course INTEGER NOT NULL,
			faculty TEXT NOT NULL,
			speciality TEXT NOT NULL,
			UNIQUE (course, faculty, speciality)
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT PRIMARY KEY,
			username TEXT,
			name TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'student',
			status TEXT NOT NULL DEFAULT 'user',
			group_id BIGINT REFERENCES student_groups(id) ON DELETE SET NULL,
			subgroup INTEGER NOT NULL DEFAULT 0,
			teacher_name TEXT,
			daily_notify BOOLEAN NOT NULL DEFAULT FALSE,
			notify_time INTEGER NOT NULL DEFAULT 8,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_notify ON users(daily_notify, notify_time)`,
		`CREATE TABLE IF NOT EXISTS lessons (
			id ` + serial + `,
			weekday INTEGER NOT NULL CHECK (weekday BETWEEN 0 AND 6),
			slot INTEGER NOT NULL,
			subject TEXT NOT NULL,
			teacher TEXT,
			teacher_key TEXT NOT NULL DEFAULT '',
			room TEXT,
			lesson_type TEXT,
			group_id BIGINT NOT NULL REFERENCES student_groups(id) ON DELETE CASCADE,
			subgroup INTEGER NOT NULL DEFAULT 0,
			even_week BOOLEAN NOT NULL,
			UNIQUE (group_id, weekday, slot, subgroup, even_week)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_lessons_day ON lessons(weekday, even_week, slot)`,
	}
}

const userColumns = `u.id, u.username, u.name, u.role, u.status, u.group_id, u.subgroup,
	u.teacher_name, u.daily_notify, u.notify_time,
	g.course AS group_course, g.faculty AS group_faculty, g.speciality AS group_speciality`

const userFrom = ` FROM users u LEFT JOIN student_groups g ON g.id = u.group_id`

type userRow struct {
	ID              int64          `db:"id"`
	Username        sql.NullString `db:"username"`
	Name            string         `db:"name"`
	Role            string         `db:"role"`
	Status          string         `db:"status"`
	GroupID         sql.NullInt64  `db:"group_id"`
	Subgroup        int            `db:"subgroup"`
	TeacherName     sql.NullString `db:"teacher_name"`
	DailyNotify     bool           `db:"daily_notify"`
	NotifyHour      int            `db:"notify_time"`
	GroupCourse     sql.NullInt64  `db:"group_course"`
	GroupFaculty    sql.NullString `db:"group_faculty"`
	GroupSpeciality sql.NullString `db:"group_speciality"`
}

func (r userRow) toDomain() domain.User {
	u := domain.User{
		ID:          r.ID,
		Username:    r.Username.String,
		Name:        r.Name,
		Role:        domain.Role(r.Role),
		Status:      domain.Status(r.Status),
		Subgroup:    r.Subgroup,
		TeacherName: r.TeacherName.String,
		DailyNotify: r.DailyNotify,
		NotifyHour:  r.NotifyHour,
	}
	if r.GroupID.Valid {
		u.GroupID = r.GroupID.Int64
		u.Group = &domain.Group{
			ID:         r.GroupID.Int64,
			Course:     int(r.GroupCourse.Int64),
			Faculty:    r.GroupFaculty.String,
			Speciality: r.GroupSpeciality.String,
		}
	}
	return u
}

const lessonColumns = `l.id, l.weekday, l.slot, l.subject, l.teacher, l.room, l.lesson_type,
	l.group_id, l.subgroup, l.even_week,
	g.course AS group_course, g.faculty AS group_faculty, g.speciality AS group_speciality`

const lessonFrom = ` FROM lessons l JOIN student_groups g ON g.id = l.group_id`

type lessonRow struct {
	ID              int64          `db:"id"`
	Weekday         int            `db:"weekday"`
	Slot            int            `db:"slot"`
	Subject         string         `db:"subject"`
	Teacher         sql.NullString `db:"teacher"`
	Room            sql.NullString `db:"room"`
	Format          sql.NullString `db:"lesson_type"`
	GroupID         int64          `db:"group_id"`
	Subgroup        int            `db:"subgroup"`
	EvenWeek        bool           `db:"even_week"`
	GroupCourse     int            `db:"group_course"`
	GroupFaculty    string         `db:"group_faculty"`
	GroupSpeciality string         `db:"group_speciality"`
}

func (r lessonRow) toDomain() domain.Lesson {
	return domain.Lesson{
		ID:       r.ID,
		Weekday:  r.Weekday,
		Slot:     r.Slot,
		Subject:  r.Subject,
		Teacher:  r.Teacher.String,
		Room:     r.Room.String,
		Format:   r.Format.String,
		GroupID:  r.GroupID,
		Subgroup: r.Subgroup,
		EvenWeek: r.EvenWeek,
		Group: &domain.Group{
			ID:         r.GroupID,
			Course:     r.GroupCourse,
			Faculty:    r.GroupFaculty,
			Speciality: r.GroupSpeciality,
		},
	}
}

// GetUser loads a user with its group.
func (s *SQLStore) GetUser(ctx context.Context, id int64) (domain.User, error) {
	if err := s.check(ctx); err != nil {
		return domain.User{}, err
	}

	var row userRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT `+userColumns+userFrom+` WHERE u.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}

	return row.toDomain(), nil
}

// ListUsers returns every user ordered by id.
func (s *SQLStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	return s.selectUsers(ctx, `SELECT `+userColumns+userFrom+` ORDER BY u.id`)
}

// Subscribers returns opted-in users, optionally restricted to one delivery hour.
func (s *SQLStore) Subscribers(ctx context.Context, filter SubscriberFilter) ([]domain.User, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + userFrom + ` WHERE u.daily_notify = ?`
	args := []interface{}{true}
	if filter.NotifyHour != nil {
		query += ` AND u.notify_time = ?`
		args = append(args, *filter.NotifyHour)
	}
	query += ` ORDER BY u.id`

	return s.selectUsers(ctx, query, args...)
}

func (s *SQLStore) selectUsers(ctx context.Context, query string, args ...interface{}) ([]domain.User, error) {
	var rows []userRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}

	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toDomain())
	}
	return users, nil
}

// SaveStudent creates or updates a student registration and clears any
// teacher key. It reports whether the user was created.
func (s *SQLStore) SaveStudent(ctx context.Context, profile domain.Profile, groupID int64, subgroup int) (bool, error) {
	if err := s.check(ctx); err != nil {
		return false, err
	}
	if profile.ID == 0 {
		return false, errors.New("user id is required")
	}

	var created bool
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var groups int
		if err := tx.GetContext(ctx, &groups, s.db.Rebind(`SELECT COUNT(*) FROM student_groups WHERE id = ?`), groupID); err != nil {
			return fmt.Errorf("check group: %w", err)
		}
		if groups == 0 {
			return domain.ErrGroupNotFound
		}

		res, err := tx.ExecContext(ctx, s.db.Rebind(`INSERT INTO users (id, username, name, role, group_id, subgroup, teacher_name)
			VALUES (?, ?, ?, ?, ?, ?, NULL) ON CONFLICT (id) DO NOTHING`),
			profile.ID, nullString(profile.Username), profile.Name, string(domain.RoleStudent), groupID, subgroup)
		if err != nil {
			return fmt.Errorf("insert student: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 1 {
			created = true
			return nil
		}

		if _, err := tx.ExecContext(ctx, s.db.Rebind(`UPDATE users
			SET username = ?, name = ?, role = ?, group_id = ?, subgroup = ?, teacher_name = NULL
			WHERE id = ?`),
			nullString(profile.Username), profile.Name, string(domain.RoleStudent), groupID, subgroup, profile.ID); err != nil {
			return fmt.Errorf("update student: %w", err)
		}
		return nil
	})

	return created, err
}

// SaveTeacher creates or updates a teacher registration and clears the group.
func (s *SQLStore) SaveTeacher(ctx context.Context, profile domain.Profile, teacherName string) (bool, error) {
	if err := s.check(ctx); err != nil {
		return false, err
	}
	if profile.ID == 0 {
		return false, errors.New("user id is required")
	}

	var created bool
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, s.db.Rebind(`INSERT INTO users (id, username, name, role, group_id, subgroup, teacher_name)
			VALUES (?, ?, ?, ?, NULL, 0, ?) ON CONFLICT (id) DO NOTHING`),
			profile.ID, nullString(profile.Username), profile.Name, string(domain.RoleTeacher), teacherName)
		if err != nil {
			return fmt.Errorf("insert teacher: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 1 {
			created = true
			return nil
		}

		if _, err := tx.ExecContext(ctx, s.db.Rebind(`UPDATE users
			SET username = ?, name = ?, role = ?, group_id = NULL, subgroup = 0, teacher_name = ?
			WHERE id = ?`),
			nullString(profile.Username), profile.Name, string(domain.RoleTeacher), teacherName, profile.ID); err != nil {
			return fmt.Errorf("update teacher: %w", err)
		}
		return nil
	})

	return created, err
}

// EnsureAdmin grants admin status, creating a bare user row when needed.
func (s *SQLStore) EnsureAdmin(ctx context.Context, userID int64) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO users (id, status) VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET status = excluded.status`), userID, string(domain.StatusAdmin))
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	return nil
}

// ToggleNotify flips the opt-in flag in one statement and returns the new value.
func (s *SQLStore) ToggleNotify(ctx context.Context, userID int64) (bool, error) {
	if err := s.check(ctx); err != nil {
		return false, err
	}

	var enabled bool
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(`UPDATE users SET daily_notify = NOT daily_notify
		WHERE id = ? RETURNING daily_notify`), userID).Scan(&enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return false, domain.ErrUserNotFound
	}
	if err != nil {
		return false, fmt.Errorf("toggle notify: %w", err)
	}
	return enabled, nil
}

// SetNotifyHour stores the delivery hour and opts the user in.
func (s *SQLStore) SetNotifyHour(ctx context.Context, userID int64, hour int) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE users SET notify_time = ?, daily_notify = ? WHERE id = ?`), hour, true, userID)
	if err != nil {
		return fmt.Errorf("set notify hour: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// DisableAllNotify opts every user out and returns how many changed.
func (s *SQLStore) DisableAllNotify(ctx context.Context) (int64, error) {
	if err := s.check(ctx); err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE users SET daily_notify = ? WHERE daily_notify = ?`), false, true)
	if err != nil {
		return 0, fmt.Errorf("disable notify: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Stats aggregates user, group and lesson counters.
func (s *SQLStore) Stats(ctx context.Context) (Stats, error) {
	if err := s.check(ctx); err != nil {
		return Stats{}, err
	}

	var stats Stats
	err := s.db.GetContext(ctx, &stats, s.db.Rebind(`SELECT
			COUNT(*) AS users,
			COALESCE(SUM(CASE WHEN role = ? THEN 1 ELSE 0 END), 0) AS teachers,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS admins,
			COALESCE(SUM(CASE WHEN daily_notify THEN 1 ELSE 0 END), 0) AS notify_enabled,
			(SELECT COUNT(*) FROM student_groups) AS group_count,
			(SELECT COUNT(*) FROM lessons) AS lesson_count
		FROM users`), string(domain.RoleTeacher), string(domain.StatusAdmin))
	if err != nil {
		return Stats{}, fmt.Errorf("count stats: %w", err)
	}
	return stats, nil
}

// Faculties lists distinct faculties alphabetically.
func (s *SQLStore) Faculties(ctx context.Context) ([]string, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	var faculties []string
	if err := s.db.SelectContext(ctx, &faculties, `SELECT DISTINCT faculty FROM student_groups ORDER BY faculty`); err != nil {
		return nil, fmt.Errorf("select faculties: %w", err)
	}
	return faculties, nil
}

// Courses lists the courses offered by a faculty.
func (s *SQLStore) Courses(ctx context.Context, faculty string) ([]int, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	var courses []int
	if err := s.db.SelectContext(ctx, &courses, s.db.Rebind(`SELECT DISTINCT course FROM student_groups
		WHERE faculty = ? ORDER BY course`), faculty); err != nil {
		return nil, fmt.Errorf("select courses: %w", err)
	}
	return courses, nil
}

// Groups lists the groups of one faculty and course ordered by speciality.
func (s *SQLStore) Groups(ctx context.Context, faculty string, course int) ([]domain.Group, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	var rows []groupRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(`SELECT id, course, faculty, speciality FROM student_groups
		WHERE faculty = ? AND course = ? ORDER BY speciality`), faculty, course); err != nil {
		return nil, fmt.Errorf("select groups: %w", err)
	}

	groups := make([]domain.Group, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, domain.Group(row))
	}
	return groups, nil
}

type groupRow struct {
	ID         int64  `db:"id"`
	Course     int    `db:"course"`
	Faculty    string `db:"faculty"`
	Speciality string `db:"speciality"`
}

// GetGroup loads one group.
func (s *SQLStore) GetGroup(ctx context.Context, id int64) (domain.Group, error) {
	if err := s.check(ctx); err != nil {
		return domain.Group{}, err
	}

	var row groupRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT id, course, faculty, speciality FROM student_groups WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Group{}, domain.ErrGroupNotFound
	}
	if err != nil {
		return domain.Group{}, fmt.Errorf("get group: %w", err)
	}
	return domain.Group(row), nil
}

// LessonsByGroup returns the lessons of a group that apply to the given
// subgroup: whole-group lessons plus those of the subgroup itself.
func (s *SQLStore) LessonsByGroup(ctx context.Context, groupID int64, subgroup int, filter LessonFilter) ([]domain.Lesson, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + lessonColumns + lessonFrom + `
		WHERE l.weekday = ? AND l.even_week = ? AND l.group_id = ? AND l.subgroup IN (?, ?)`
	args := []interface{}{filter.Weekday, filter.EvenWeek, groupID, domain.AllSubgroups, subgroup}

	return s.selectLessons(ctx, query, args, filter.Slot)
}

// LessonsByTeacher returns lessons whose teacher contains teacherKey,
// ignoring case.
func (s *SQLStore) LessonsByTeacher(ctx context.Context, teacherKey string, filter LessonFilter) ([]domain.Lesson, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + lessonColumns + lessonFrom + `
		WHERE l.weekday = ? AND l.even_week = ? AND l.teacher_key LIKE ? ESCAPE '\'`
	args := []interface{}{filter.Weekday, filter.EvenWeek, "%" + escapeLike(domain.TeacherKey(teacherKey)) + "%"}

	return s.selectLessons(ctx, query, args, filter.Slot)
}

func (s *SQLStore) selectLessons(ctx context.Context, query string, args []interface{}, slot *int) ([]domain.Lesson, error) {
	if slot != nil {
		query += ` AND l.slot = ?`
		args = append(args, *slot)
	}
	query += ` ORDER BY l.slot, l.subgroup, l.id`

	var rows []lessonRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select lessons: %w", err)
	}

	lessons := make([]domain.Lesson, 0, len(rows))
	for _, row := range rows {
		lessons = append(lessons, row.toDomain())
	}
	return lessons, nil
}

// LessonDays lists the weekdays that have at least one lesson.
func (s *SQLStore) LessonDays(ctx context.Context) ([]int, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	var days []int
	if err := s.db.SelectContext(ctx, &days, `SELECT DISTINCT weekday FROM lessons ORDER BY weekday`); err != nil {
		return nil, fmt.Errorf("select lesson days: %w", err)
	}
	return days, nil
}

// ImportLessons upserts lessons and their groups in one transaction. With
// replace set, existing lessons are deleted first.
func (s *SQLStore) ImportLessons(ctx context.Context, lessons []domain.Lesson, replace bool) (ImportResult, error) {
	if err := s.check(ctx); err != nil {
		return ImportResult{}, err
	}

	var result ImportResult
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if replace {
			res, err := tx.ExecContext(ctx, `DELETE FROM lessons`)
			if err != nil {
				return fmt.Errorf("clear lessons: %w", err)
			}
			result.Removed, _ = res.RowsAffected()
		}

		groupIDs := make(map[groupKey]int64)
		for i, lesson := range lessons {
			if lesson.Group == nil {
				return fmt.Errorf("lesson %d: group is required", i)
			}

			key := keyOf(*lesson.Group)
			groupID, ok := groupIDs[key]
			if !ok {
				id, created, err := s.ensureGroup(ctx, tx, key)
				if err != nil {
					return err
				}
				if created {
					result.GroupsCreated++
				}
				groupIDs[key] = id
				groupID = id
			}

			if _, err := tx.ExecContext(ctx, s.db.Rebind(`INSERT INTO lessons
				(weekday, slot, subject, teacher, teacher_key, room, lesson_type, group_id, subgroup, even_week)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT (group_id, weekday, slot, subgroup, even_week) DO UPDATE SET
					subject = excluded.subject,
					teacher = excluded.teacher,
					teacher_key = excluded.teacher_key,
					room = excluded.room,
					lesson_type = excluded.lesson_type`),
				lesson.Weekday, lesson.Slot, lesson.Subject, nullString(lesson.Teacher), domain.TeacherKey(lesson.Teacher),
				nullString(lesson.Room), nullString(lesson.Format), groupID, lesson.Subgroup, lesson.EvenWeek); err != nil {
				return fmt.Errorf("upsert lesson %d: %w", i, err)
			}
			result.Lessons++
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	return result, nil
}

type groupKey struct {
	course     int
	faculty    string
	speciality string
}

func keyOf(g domain.Group) groupKey {
	return groupKey{course: g.Course, faculty: g.Faculty, speciality: g.Speciality}
}

func (s *SQLStore) ensureGroup(ctx context.Context, tx *sqlx.Tx, key groupKey) (int64, bool, error) {
	var id int64
	err := tx.GetContext(ctx, &id, s.db.Rebind(`SELECT id FROM student_groups
		WHERE course = ? AND faculty = ? AND speciality = ?`), key.course, key.faculty, key.speciality)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("find group: %w", err)
	}

	if err := tx.QueryRowxContext(ctx, s.db.Rebind(`INSERT INTO student_groups (course, faculty, speciality)
		VALUES (?, ?, ?) RETURNING id`), key.course, key.faculty, key.speciality).Scan(&id); err != nil {
		return 0, false, fmt.Errorf("insert group: %w", err)
	}
	return id, true, nil
}

// DeleteAllLessons removes every lesson and returns how many were deleted.
func (s *SQLStore) DeleteAllLessons(ctx context.Context) (int64, error) {
	if err := s.check(ctx); err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM lessons`)
	if err != nil {
		return 0, fmt.Errorf("delete lessons: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Ping checks database connectivity.
func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", s.dialect, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *SQLStore) Close(context.Context) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLStore) check(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("sql store is not initialized")
	}
	if ctx == nil {
		return errors.New("context is required")
	}
	return nil
}

func (s *SQLStore) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func nullString(value string) sql.NullString {
	value = strings.TrimSpace(value)
	return sql.NullString{String: value, Valid: value != ""}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
