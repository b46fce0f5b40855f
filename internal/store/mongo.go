package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"asu_schedule_bot/internal/config"
	"asu_schedule_bot/internal/domain"
)

// Collection names used by the Mongo backend.
const (
	CollectionUsers    = "users"
	CollectionGroups   = "groups"
	CollectionLessons  = "lessons"
	CollectionCounters = "counters"
)

const groupSequence = "groups"

// mongoClient captures the subset of mongo.Client behavior we rely on to allow
// lightweight stubbing in tests without a live Mongo deployment.
type mongoClient interface {
	Ping(context.Context, *readpref.ReadPref) error
	Database(string, ...*options.DatabaseOptions) *mongo.Database
	Disconnect(context.Context) error
}

// collection is the subset of *mongo.Collection used by MongoStore.
type collection interface {
	countCollection
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) *mongo.SingleResult
	DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	Distinct(ctx context.Context, fieldName string, filter interface{}, opts ...*options.DistinctOptions) ([]interface{}, error)
}

// connectMongo is overridable for tests.
var connectMongo = func(ctx context.Context, opts *options.ClientOptions) (mongoClient, error) {
	return mongo.Connect(ctx, opts)
}

// createIndexes is overridable for tests.
var createIndexes = func(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) ([]string, error) {
	return coll.Indexes().CreateMany(ctx, models)
}

// nowUTC is overridable for tests.
var nowUTC = func() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

var _ Store = (*MongoStore)(nil)

// MongoStore implements Store on MongoDB. Group ids are allocated from a
// counter document so they stay numeric like the SQL backend. Lessons are
// addressed by their natural key and carry no numeric id.
type MongoStore struct {
	client   mongoClient
	db       *mongo.Database
	users    collection
	groups   collection
	lessons  collection
	counters collection
}

type userDoc struct {
	ID          int64     `bson:"_id"`
	Username    string    `bson:"username,omitempty"`
	Name        string    `bson:"name"`
	Role        string    `bson:"role"`
	Status      string    `bson:"status"`
	GroupID     int64     `bson:"group_id"`
	Subgroup    int       `bson:"subgroup"`
	TeacherName string    `bson:"teacher_name,omitempty"`
	DailyNotify bool      `bson:"daily_notify"`
	NotifyHour  int       `bson:"notify_time"`
	CreatedAt   time.Time `bson:"created_at"`
}

type groupDoc struct {
	ID         int64  `bson:"_id"`
	Course     int    `bson:"course"`
	Faculty    string `bson:"faculty"`
	Speciality string `bson:"speciality"`
}

type lessonDoc struct {
	Weekday    int    `bson:"weekday"`
	Slot       int    `bson:"slot"`
	Subject    string `bson:"subject"`
	Teacher    string `bson:"teacher"`
	TeacherKey string `bson:"teacher_key"`
	Room       string `bson:"room"`
	Format     string `bson:"lesson_type"`
	GroupID    int64  `bson:"group_id"`
	Subgroup   int    `bson:"subgroup"`
	EvenWeek   bool   `bson:"even_week"`
}

func (d userDoc) toDomain(groups map[int64]domain.Group) domain.User {
	u := domain.User{
		ID:          d.ID,
		Username:    d.Username,
		Name:        d.Name,
		Role:        domain.Role(d.Role),
		Status:      domain.Status(d.Status),
		GroupID:     d.GroupID,
		Subgroup:    d.Subgroup,
		TeacherName: d.TeacherName,
		DailyNotify: d.DailyNotify,
		NotifyHour:  d.NotifyHour,
	}
	if g, ok := groups[d.GroupID]; ok {
		u.Group = &g
	}
	return u
}

func (d groupDoc) toDomain() domain.Group {
	return domain.Group{ID: d.ID, Course: d.Course, Faculty: d.Faculty, Speciality: d.Speciality}
}

func (d lessonDoc) toDomain(groups map[int64]domain.Group) domain.Lesson {
	l := domain.Lesson{
		Weekday:  d.Weekday,
		Slot:     d.Slot,
		Subject:  d.Subject,
		Teacher:  d.Teacher,
		Room:     d.Room,
		Format:   d.Format,
		GroupID:  d.GroupID,
		Subgroup: d.Subgroup,
		EvenWeek: d.EvenWeek,
	}
	if g, ok := groups[d.GroupID]; ok {
		l.Group = &g
	}
	return l
}

// NewMongoStore initializes the Mongo client using the supplied configuration
// and verifies connectivity with a ping.
func NewMongoStore(ctx context.Context, cfg config.Config) (*MongoStore, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	client, err := connectMongo(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(cfg.MongoDB)

	return &MongoStore{
		client:   client,
		db:       db,
		users:    db.Collection(CollectionUsers),
		groups:   db.Collection(CollectionGroups),
		lessons:  db.Collection(CollectionLessons),
		counters: db.Collection(CollectionCounters),
	}, nil
}

// EnsureSchema creates the indexes that mirror the SQL constraints.
// Collections are created implicitly if they do not already exist.
func (m *MongoStore) EnsureSchema(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if m == nil || m.db == nil {
		return errors.New("mongo store is not initialized")
	}

	plan := []struct {
		collection string
		models     []mongo.IndexModel
	}{
		{CollectionUsers, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "daily_notify", Value: 1}, {Key: "notify_time", Value: 1}},
				Options: options.Index().SetName("notify_lookup"),
			},
		}},
		{CollectionGroups, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "course", Value: 1}, {Key: "faculty", Value: 1}, {Key: "speciality", Value: 1}},
				Options: options.Index().SetName("group_identity_unique").SetUnique(true),
			},
		}},
		{CollectionLessons, []mongo.IndexModel{
			{
				Keys: bson.D{
					{Key: "group_id", Value: 1},
					{Key: "weekday", Value: 1},
					{Key: "slot", Value: 1},
					{Key: "subgroup", Value: 1},
					{Key: "even_week", Value: 1},
				},
				Options: options.Index().SetName("lesson_key_unique").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "weekday", Value: 1}, {Key: "even_week", Value: 1}, {Key: "slot", Value: 1}},
				Options: options.Index().SetName("lesson_day"),
			},
		}},
	}

	for _, p := range plan {
		if _, err := createIndexes(ctx, m.db.Collection(p.collection), p.models); err != nil {
			return fmt.Errorf("create %s indexes: %w", p.collection, err)
		}
	}

	return nil
}

// GetUser loads a user with its group.
func (m *MongoStore) GetUser(ctx context.Context, id int64) (domain.User, error) {
	if err := m.check(ctx); err != nil {
		return domain.User{}, err
	}

	var doc userDoc
	if err := m.users.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("find user: %w", err)
	}

	groups, err := m.loadGroups(ctx, doc.GroupID)
	if err != nil {
		return domain.User{}, err
	}

	return doc.toDomain(groups), nil
}

// ListUsers returns every user ordered by id.
func (m *MongoStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	if err := m.check(ctx); err != nil {
		return nil, err
	}

	return m.findUsers(ctx, bson.D{})
}

// Subscribers returns opted-in users, optionally restricted to one delivery hour.
func (m *MongoStore) Subscribers(ctx context.Context, filter SubscriberFilter) ([]domain.User, error) {
	if err := m.check(ctx); err != nil {
		return nil, err
	}

	query := bson.D{{Key: "daily_notify", Value: true}}
	if filter.NotifyHour != nil {
		query = append(query, bson.E{Key: "notify_time", Value: *filter.NotifyHour})
	}

	return m.findUsers(ctx, query)
}

func (m *MongoStore) findUsers(ctx context.Context, filter bson.D) ([]domain.User, error) {
	cursor, err := m.users.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}

	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	ids := make([]int64, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.GroupID)
	}
	groups, err := m.loadGroups(ctx, ids...)
	if err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toDomain(groups))
	}
	return users, nil
}

// SaveStudent creates or updates a student registration and clears any
// teacher key. It reports whether the user was created.
func (m *MongoStore) SaveStudent(ctx context.Context, profile domain.Profile, groupID int64, subgroup int) (bool, error) {
	if err := m.check(ctx); err != nil {
		return false, err
	}
	if profile.ID == 0 {
		return false, errors.New("user id is required")
	}

	count, err := m.groups.CountDocuments(ctx, bson.D{{Key: "_id", Value: groupID}})
	if err != nil {
		return false, fmt.Errorf("check group: %w", err)
	}
	if count == 0 {
		return false, domain.ErrGroupNotFound
	}

	return m.upsertUser(ctx, profile.ID, bson.D{
		{Key: "username", Value: profile.Username},
		{Key: "name", Value: profile.Name},
		{Key: "role", Value: string(domain.RoleStudent)},
		{Key: "group_id", Value: groupID},
		{Key: "subgroup", Value: subgroup},
		{Key: "teacher_name", Value: ""},
	})
}

// SaveTeacher creates or updates a teacher registration and clears the group.
func (m *MongoStore) SaveTeacher(ctx context.Context, profile domain.Profile, teacherName string) (bool, error) {
	if err := m.check(ctx); err != nil {
		return false, err
	}
	if profile.ID == 0 {
		return false, errors.New("user id is required")
	}

	return m.upsertUser(ctx, profile.ID, bson.D{
		{Key: "username", Value: profile.Username},
		{Key: "name", Value: profile.Name},
		{Key: "role", Value: string(domain.RoleTeacher)},
		{Key: "group_id", Value: int64(0)},
		{Key: "subgroup", Value: domain.AllSubgroups},
		{Key: "teacher_name", Value: teacherName},
	})
}

// EnsureAdmin grants admin status, creating a bare user document when needed.
func (m *MongoStore) EnsureAdmin(ctx context.Context, userID int64) error {
	if err := m.check(ctx); err != nil {
		return err
	}

	_, err := m.users.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: userID}},
		bson.D{
			{Key: "$set", Value: bson.D{{Key: "status", Value: string(domain.StatusAdmin)}}},
			{Key: "$setOnInsert", Value: bson.D{
				{Key: "name", Value: ""},
				{Key: "role", Value: string(domain.RoleStudent)},
				{Key: "group_id", Value: int64(0)},
				{Key: "subgroup", Value: domain.AllSubgroups},
				{Key: "daily_notify", Value: false},
				{Key: "notify_time", Value: domain.DefaultNotifyHour},
				{Key: "created_at", Value: nowUTC()},
			}},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	return nil
}

func (m *MongoStore) upsertUser(ctx context.Context, id int64, set bson.D) (bool, error) {
	res, err := m.users.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{
			{Key: "$set", Value: set},
			{Key: "$setOnInsert", Value: bson.D{
				{Key: "status", Value: string(domain.StatusUser)},
				{Key: "daily_notify", Value: false},
				{Key: "notify_time", Value: domain.DefaultNotifyHour},
				{Key: "created_at", Value: nowUTC()},
			}},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, fmt.Errorf("upsert user: %w", err)
	}
	return res.UpsertedCount == 1, nil
}

// ToggleNotify flips the opt-in flag with a pipeline update and returns the
// new value.
func (m *MongoStore) ToggleNotify(ctx context.Context, userID int64) (bool, error) {
	if err := m.check(ctx); err != nil {
		return false, err
	}

	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{{Key: "daily_notify", Value: bson.D{{Key: "$not", Value: "$daily_notify"}}}}}},
	}

	var doc userDoc
	err := m.users.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: userID}},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, domain.ErrUserNotFound
	}
	if err != nil {
		return false, fmt.Errorf("toggle notify: %w", err)
	}
	return doc.DailyNotify, nil
}

// SetNotifyHour stores the delivery hour and opts the user in.
func (m *MongoStore) SetNotifyHour(ctx context.Context, userID int64, hour int) error {
	if err := m.check(ctx); err != nil {
		return err
	}

	res, err := m.users.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: userID}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "notify_time", Value: hour},
			{Key: "daily_notify", Value: true},
		}}},
	)
	if err != nil {
		return fmt.Errorf("set notify hour: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// DisableAllNotify opts every user out and returns how many changed.
func (m *MongoStore) DisableAllNotify(ctx context.Context) (int64, error) {
	if err := m.check(ctx); err != nil {
		return 0, err
	}

	res, err := m.users.UpdateMany(ctx,
		bson.D{{Key: "daily_notify", Value: true}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "daily_notify", Value: false}}}},
	)
	if err != nil {
		return 0, fmt.Errorf("disable notify: %w", err)
	}
	return res.ModifiedCount, nil
}

// Stats aggregates user, group and lesson counters.
func (m *MongoStore) Stats(ctx context.Context) (Stats, error) {
	if err := m.check(ctx); err != nil {
		return Stats{}, err
	}
	return countStats(ctx, m.users, m.groups, m.lessons)
}

// Faculties lists distinct faculties alphabetically.
func (m *MongoStore) Faculties(ctx context.Context) ([]string, error) {
	if err := m.check(ctx); err != nil {
		return nil, err
	}

	values, err := m.groups.Distinct(ctx, "faculty", bson.D{})
	if err != nil {
		return nil, fmt.Errorf("distinct faculties: %w", err)
	}

	faculties := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			faculties = append(faculties, s)
		}
	}
	sort.Strings(faculties)
	return faculties, nil
}

// Courses lists the courses offered by a faculty.
func (m *MongoStore) Courses(ctx context.Context, faculty string) ([]int, error) {
	if err := m.check(ctx); err != nil {
		return nil, err
	}

	values, err := m.groups.Distinct(ctx, "course", bson.D{{Key: "faculty", Value: faculty}})
	if err != nil {
		return nil, fmt.Errorf("distinct courses: %w", err)
	}
	return sortedInts(values), nil
}

// Groups lists the groups of one faculty and course ordered by speciality.
func (m *MongoStore) Groups(ctx context.Context, faculty string, course int) ([]domain.Group, error) {
	if err := m.check(ctx); err != nil {
		return nil, err
	}

	cursor, err := m.groups.Find(ctx,
		bson.D{{Key: "faculty", Value: faculty}, {Key: "course", Value: course}},
		options.Find().SetSort(bson.D{{Key: "speciality", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find groups: %w", err)
	}

	var docs []groupDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode groups: %w", err)
	}

	groups := make([]domain.Group, 0, len(docs))
	for _, d := range docs {
		groups = append(groups, d.toDomain())
	}
	return groups, nil
}

// GetGroup loads one group.
func (m *MongoStore) GetGroup(ctx context.Context, id int64) (domain.Group, error) {
	if err := m.check(ctx); err != nil {
		return domain.Group{}, err
	}

	var doc groupDoc
	if err := m.groups.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Group{}, domain.ErrGroupNotFound
		}
		return domain.Group{}, fmt.Errorf("find group: %w", err)
	}
	return doc.toDomain(), nil
}

// LessonsByGroup returns the lessons of a group that apply to the given
// subgroup: whole-group lessons plus those of the subgroup itself.
func (m *MongoStore) LessonsByGroup(ctx context.Context, groupID int64, subgroup int, filter LessonFilter) ([]domain.Lesson, error) {
	if err := m.check(ctx); err != nil {
		return nil, err
	}

	query := dayFilter(filter)
	query = append(query,
		bson.E{Key: "group_id", Value: groupID},
		bson.E{Key: "subgroup", Value: bson.D{{Key: "$in", Value: bson.A{domain.AllSubgroups, subgroup}}}},
	)
	return m.findLessons(ctx, query)
}

// LessonsByTeacher returns lessons whose teacher contains teacherKey,
// ignoring case.
func (m *MongoStore) LessonsByTeacher(ctx context.Context, teacherKey string, filter LessonFilter) ([]domain.Lesson, error) {
	if err := m.check(ctx); err != nil {
		return nil, err
	}

	query := dayFilter(filter)
	query = append(query, bson.E{
		Key:   "teacher_key",
		Value: primitive.Regex{Pattern: regexp.QuoteMeta(domain.TeacherKey(teacherKey))},
	})
	return m.findLessons(ctx, query)
}

func dayFilter(filter LessonFilter) bson.D {
	query := bson.D{
		{Key: "weekday", Value: filter.Weekday},
		{Key: "even_week", Value: filter.EvenWeek},
	}
	if filter.Slot != nil {
		query = append(query, bson.E{Key: "slot", Value: *filter.Slot})
	}
	return query
}

func (m *MongoStore) findLessons(ctx context.Context, filter bson.D) ([]domain.Lesson, error) {
	cursor, err := m.lessons.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "slot", Value: 1}, {Key: "subgroup", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find lessons: %w", err)
	}

	var docs []lessonDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode lessons: %w", err)
	}

	ids := make([]int64, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.GroupID)
	}
	groups, err := m.loadGroups(ctx, ids...)
	if err != nil {
		return nil, err
	}

	lessons := make([]domain.Lesson, 0, len(docs))
	for _, d := range docs {
		lessons = append(lessons, d.toDomain(groups))
	}
	return lessons, nil
}

// LessonDays lists the weekdays that have at least one lesson.
func (m *MongoStore) LessonDays(ctx context.Context) ([]int, error) {
	if err := m.check(ctx); err != nil {
		return nil, err
	}

	values, err := m.lessons.Distinct(ctx, "weekday", bson.D{})
	if err != nil {
		return nil, fmt.Errorf("distinct lesson days: %w", err)
	}
	return sortedInts(values), nil
}

// ImportLessons upserts lessons and their groups. MongoDB offers no
// multi-document transaction on standalone servers, so a failed import keeps
// the rows written before the failure; re-running it converges.
func (m *MongoStore) ImportLessons(ctx context.Context, lessons []domain.Lesson, replace bool) (ImportResult, error) {
	if err := m.check(ctx); err != nil {
		return ImportResult{}, err
	}

	var result ImportResult
	if replace {
		res, err := m.lessons.DeleteMany(ctx, bson.D{})
		if err != nil {
			return ImportResult{}, fmt.Errorf("clear lessons: %w", err)
		}
		result.Removed = res.DeletedCount
	}

	groupIDs := make(map[groupKey]int64)
	for i, lesson := range lessons {
		if lesson.Group == nil {
			return result, fmt.Errorf("lesson %d: group is required", i)
		}

		key := keyOf(*lesson.Group)
		groupID, ok := groupIDs[key]
		if !ok {
			id, created, err := m.ensureGroup(ctx, key)
			if err != nil {
				return result, err
			}
			if created {
				result.GroupsCreated++
			}
			groupIDs[key] = id
			groupID = id
		}

		doc := lessonDoc{
			Weekday:    lesson.Weekday,
			Slot:       lesson.Slot,
			Subject:    lesson.Subject,
			Teacher:    lesson.Teacher,
			TeacherKey: domain.TeacherKey(lesson.Teacher),
			Room:       lesson.Room,
			Format:     lesson.Format,
			GroupID:    groupID,
			Subgroup:   lesson.Subgroup,
			EvenWeek:   lesson.EvenWeek,
		}
		keyFilter := bson.D{
			{Key: "group_id", Value: doc.GroupID},
			{Key: "weekday", Value: doc.Weekday},
			{Key: "slot", Value: doc.Slot},
			{Key: "subgroup", Value: doc.Subgroup},
			{Key: "even_week", Value: doc.EvenWeek},
		}
		if _, err := m.lessons.UpdateOne(ctx, keyFilter, bson.D{{Key: "$set", Value: doc}}, options.Update().SetUpsert(true)); err != nil {
			return result, fmt.Errorf("upsert lesson %d: %w", i, err)
		}
		result.Lessons++
	}

	return result, nil
}

func (m *MongoStore) ensureGroup(ctx context.Context, key groupKey) (int64, bool, error) {
	identity := bson.D{
		{Key: "course", Value: key.course},
		{Key: "faculty", Value: key.faculty},
		{Key: "speciality", Value: key.speciality},
	}

	var existing groupDoc
	err := m.groups.FindOne(ctx, identity).Decode(&existing)
	if err == nil {
		return existing.ID, false, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return 0, false, fmt.Errorf("find group: %w", err)
	}

	id, err := m.nextID(ctx, groupSequence)
	if err != nil {
		return 0, false, err
	}

	doc := groupDoc{ID: id, Course: key.course, Faculty: key.faculty, Speciality: key.speciality}
	if _, err := m.groups.InsertOne(ctx, doc); err != nil {
		return 0, false, fmt.Errorf("insert group: %w", err)
	}
	return id, true, nil
}

func (m *MongoStore) nextID(ctx context.Context, sequence string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := m.counters.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: sequence}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "seq", Value: int64(1)}}}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("allocate %s id: %w", sequence, err)
	}
	return counter.Seq, nil
}

// DeleteAllLessons removes every lesson and returns how many were deleted.
func (m *MongoStore) DeleteAllLessons(ctx context.Context) (int64, error) {
	if err := m.check(ctx); err != nil {
		return 0, err
	}

	res, err := m.lessons.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("delete lessons: %w", err)
	}
	return res.DeletedCount, nil
}

func (m *MongoStore) loadGroups(ctx context.Context, ids ...int64) (map[int64]domain.Group, error) {
	unique := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	groups := make(map[int64]domain.Group, len(unique))
	if len(unique) == 0 {
		return groups, nil
	}

	cursor, err := m.groups.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: unique}}}})
	if err != nil {
		return nil, fmt.Errorf("find groups: %w", err)
	}

	var docs []groupDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode groups: %w", err)
	}
	for _, d := range docs {
		groups[d.ID] = d.toDomain()
	}
	return groups, nil
}

// Ping checks connectivity against the primary.
func (m *MongoStore) Ping(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if m == nil || m.client == nil {
		return errors.New("mongo store is not initialized")
	}
	if err := m.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}
	return nil
}

// Close disconnects the Mongo client.
func (m *MongoStore) Close(ctx context.Context) error {
	if m == nil || m.client == nil {
		return nil
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	return m.client.Disconnect(ctx)
}

func (m *MongoStore) check(ctx context.Context) error {
	if m == nil || m.users == nil || m.groups == nil || m.lessons == nil || m.counters == nil {
		return errors.New("mongo store is not initialized")
	}
	if ctx == nil {
		return errors.New("context is required")
	}
	return nil
}

func sortedInts(values []interface{}) []int {
	out := make([]int, 0, len(values))
	for _, v := range values {
		switch n := v.(type) {
		case int32:
			out = append(out, int(n))
		case int64:
			out = append(out, int(n))
		case float64:
			out = append(out, int(n))
		case int:
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out
}
