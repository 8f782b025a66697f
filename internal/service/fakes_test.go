package service

import (
	"strings"
	"sync"

	"go-mt-distribution/internal/model"
	"go-mt-distribution/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory fakes for the repository ports. They run the services without a
// database; the fake TxRunner executes the transactional closure directly.

type fakeTxRunner struct{}

func (fakeTxRunner) InTx(fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

// ---- roles / permissions ----

type memRoleRepo struct {
	roles     map[uint]*model.Role
	nextID    uint
	userRoles map[uuid.UUID][]uint
	users     *memUserRepo // role lookups go through the users table
	err       error        // when set, every call fails with it
}

func newMemRoleRepo(users *memUserRepo) *memRoleRepo {
	return &memRoleRepo{
		roles:     make(map[uint]*model.Role),
		userRoles: make(map[uuid.UUID][]uint),
		users:     users,
	}
}

func (r *memRoleRepo) FindAll() ([]model.Role, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]model.Role, 0, len(r.roles))
	for _, role := range r.roles {
		out = append(out, *role)
	}
	return out, nil
}

func (r *memRoleRepo) FindByID(id uint) (*model.Role, error) {
	if r.err != nil {
		return nil, r.err
	}
	role, ok := r.roles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *role
	return &cp, nil
}

func (r *memRoleRepo) FindByName(name string) (*model.Role, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, role := range r.roles {
		if role.Name == name {
			cp := *role
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memRoleRepo) FindByNames(names []string) ([]model.Role, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []model.Role
	for _, name := range names {
		for _, role := range r.roles {
			if role.Name == name {
				out = append(out, *role)
				break
			}
		}
	}
	return out, nil
}

func (r *memRoleRepo) FindRolesForUser(userID uuid.UUID) ([]model.Role, error) {
	if r.err != nil {
		return nil, r.err
	}
	if _, ok := r.users.users[userID]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	var out []model.Role
	for _, id := range r.userRoles[userID] {
		if role, ok := r.roles[id]; ok {
			out = append(out, *role)
		}
	}
	return out, nil
}

func (r *memRoleRepo) Create(_ *gorm.DB, role *model.Role) error {
	if r.err != nil {
		return r.err
	}
	r.nextID++
	role.ID = r.nextID
	cp := *role
	r.roles[role.ID] = &cp
	return nil
}

func (r *memRoleRepo) Update(_ *gorm.DB, role *model.Role) error {
	if r.err != nil {
		return r.err
	}
	cp := *role
	r.roles[role.ID] = &cp
	return nil
}

func (r *memRoleRepo) Delete(_ *gorm.DB, id uint) error {
	if r.err != nil {
		return r.err
	}
	delete(r.roles, id)
	for userID, ids := range r.userRoles {
		kept := ids[:0]
		for _, rid := range ids {
			if rid != id {
				kept = append(kept, rid)
			}
		}
		r.userRoles[userID] = kept
	}
	return nil
}

func (r *memRoleRepo) ReplacePermissions(_ *gorm.DB, role *model.Role, permissions []model.Permission) error {
	if r.err != nil {
		return r.err
	}
	if stored, ok := r.roles[role.ID]; ok {
		stored.Permissions = permissions
	}
	return nil
}

func (r *memRoleRepo) AssignUserRole(_ *gorm.DB, userID uuid.UUID, role *model.Role) error {
	if r.err != nil {
		return r.err
	}
	r.userRoles[userID] = append(r.userRoles[userID], role.ID)
	return nil
}

func (r *memRoleRepo) ReplaceUserRoles(_ *gorm.DB, userID uuid.UUID, roles []model.Role) error {
	if r.err != nil {
		return r.err
	}
	ids := make([]uint, len(roles))
	for i, role := range roles {
		ids[i] = role.ID
	}
	r.userRoles[userID] = ids
	return nil
}

func (r *memRoleRepo) SeedDefaults() error {
	for _, role := range model.DefaultRoles {
		if _, err := r.FindByName(role.Name); err == nil {
			continue
		}
		cp := role
		if err := r.Create(nil, &cp); err != nil {
			return err
		}
	}
	return nil
}

type memPermissionRepo struct {
	permissions map[uint]*model.Permission
	nextID      uint
}

func newMemPermissionRepo() *memPermissionRepo {
	return &memPermissionRepo{permissions: make(map[uint]*model.Permission)}
}

func (r *memPermissionRepo) FindAll() ([]model.Permission, error) {
	out := make([]model.Permission, 0, len(r.permissions))
	for _, p := range r.permissions {
		out = append(out, *p)
	}
	return out, nil
}

func (r *memPermissionRepo) FindByName(name string) (*model.Permission, error) {
	for _, p := range r.permissions {
		if p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memPermissionRepo) FindByNames(names []string) ([]model.Permission, error) {
	var out []model.Permission
	for _, name := range names {
		for _, p := range r.permissions {
			if p.Name == name {
				out = append(out, *p)
				break
			}
		}
	}
	return out, nil
}

func (r *memPermissionRepo) Create(permission *model.Permission) error {
	r.nextID++
	permission.ID = r.nextID
	cp := *permission
	r.permissions[permission.ID] = &cp
	return nil
}

func (r *memPermissionRepo) SeedDefaults() error {
	for _, p := range model.DefaultPermissions {
		if _, err := r.FindByName(p.Name); err == nil {
			continue
		}
		cp := p
		if err := r.Create(&cp); err != nil {
			return err
		}
	}
	return nil
}

// ---- users ----

type memUserRepo struct {
	users map[uuid.UUID]*model.User
	err   error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *memUserRepo) FindByUsername(username string) (*model.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) FindByID(id uuid.UUID) (*model.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) Create(user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) Update(user *model.User) error {
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) FindAll() ([]model.User, error) {
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *memUserRepo) UpdateLastLogin(uuid.UUID) error { return nil }

// ---- branches ----

type memBranchRepo struct {
	branches []model.Branch
}

func (r *memBranchRepo) FindAll() ([]model.Branch, error) {
	return append([]model.Branch(nil), r.branches...), nil
}

func (r *memBranchRepo) FindActive() ([]model.Branch, error) {
	var out []model.Branch
	for _, b := range r.branches {
		if b.IsActive {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memBranchRepo) FindByBaCode(baCode string) (*model.Branch, error) {
	for _, b := range r.branches {
		if b.BaCode == baCode {
			cp := b
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memBranchRepo) Create(branch *model.Branch) error {
	branch.ID = uint(len(r.branches) + 1)
	r.branches = append(r.branches, *branch)
	return nil
}

// ---- documents ----

type memDocumentRepo struct {
	docs   map[uint]*model.Document
	nextID uint
	err    error

	// beforeUpdateStatus runs just before the guarded status update; tests
	// use it to simulate a concurrent transition winning the race.
	beforeUpdateStatus func()
}

func newMemDocumentRepo() *memDocumentRepo {
	return &memDocumentRepo{docs: make(map[uint]*model.Document)}
}

func (r *memDocumentRepo) Create(_ *gorm.DB, doc *model.Document) error {
	if r.err != nil {
		return r.err
	}
	r.nextID++
	doc.ID = r.nextID
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *memDocumentRepo) FindByID(id uint) (*model.Document, error) {
	if r.err != nil {
		return nil, r.err
	}
	doc, ok := r.docs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *doc
	return &cp, nil
}

func (r *memDocumentRepo) UpdateStatus(_ *gorm.DB, id uint, from, to model.DocumentStatus) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	if r.beforeUpdateStatus != nil {
		r.beforeUpdateStatus()
	}
	doc, ok := r.docs[id]
	if !ok || doc.Status != from {
		return 0, nil
	}
	doc.Status = to
	return 1, nil
}

func (r *memDocumentRepo) Delete(_ *gorm.DB, id uint) error {
	if r.err != nil {
		return r.err
	}
	delete(r.docs, id)
	return nil
}

func (r *memDocumentRepo) Search(filter repository.DocumentFilter) ([]model.Document, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []model.Document
	for _, doc := range r.docs {
		if matchesFilter(doc, filter) {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (r *memDocumentRepo) FindByUploader(uploaderID uuid.UUID, status model.DocumentStatus) ([]model.Document, error) {
	var out []model.Document
	for _, doc := range r.docs {
		if doc.UploaderID == uploaderID && doc.Status == status {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func matchesFilter(doc *model.Document, f repository.DocumentFilter) bool {
	if f.Branches != nil {
		if f.VisibleDraftsOf != nil {
			inBranch := doc.Status != model.StatusDraft && containsString(f.Branches, doc.BranchBaCode)
			ownDraft := doc.Status == model.StatusDraft && doc.UploaderID == *f.VisibleDraftsOf
			if !inBranch && !ownDraft {
				return false
			}
		} else if !containsString(f.Branches, doc.BranchBaCode) {
			return false
		}
	}
	if f.Status != nil && doc.Status != *f.Status {
		return false
	}
	if f.UploaderID != nil && doc.UploaderID != *f.UploaderID {
		return false
	}
	if f.MonthYear != "" && doc.MonthYear != f.MonthYear {
		return false
	}
	if f.Keyword != "" {
		haystack := strings.ToLower(doc.MtNumber + " " + doc.Subject)
		if !strings.Contains(haystack, strings.ToLower(f.Keyword)) {
			return false
		}
	}
	return true
}

// ---- history / activity ----

type memHistoryRepo struct {
	entries []model.DocumentStatusHistory
	err     error
}

func (r *memHistoryRepo) Append(_ *gorm.DB, entry *model.DocumentStatusHistory) error {
	if r.err != nil {
		return r.err
	}
	entry.ID = uint(len(r.entries) + 1)
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memHistoryRepo) FindByDocument(documentID uint) ([]model.DocumentStatusHistory, error) {
	var out []model.DocumentStatusHistory
	for _, e := range r.entries {
		if e.DocumentID == documentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memHistoryRepo) forDocument(documentID uint) []model.DocumentStatusHistory {
	out, _ := r.FindByDocument(documentID)
	return out
}

type memActivityRepo struct {
	entries []model.ActivityLog
	err     error
}

func (r *memActivityRepo) Append(_ *gorm.DB, entry *model.ActivityLog) error {
	if r.err != nil {
		return r.err
	}
	entry.ID = uint(len(r.entries) + 1)
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memActivityRepo) Recent(limit int) ([]model.ActivityLog, error) {
	if limit > len(r.entries) {
		limit = len(r.entries)
	}
	out := make([]model.ActivityLog, 0, limit)
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.entries[i])
	}
	return out, nil
}

func (r *memActivityRepo) FindByUser(userID uuid.UUID, limit int) ([]model.ActivityLog, error) {
	var out []model.ActivityLog
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if r.entries[i].UserID == userID {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

func (r *memActivityRepo) byAction(action string) []model.ActivityLog {
	var out []model.ActivityLog
	for _, e := range r.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

// ---- notifier ----

type recordingNotifier struct {
	mu     sync.Mutex
	events []map[string]interface{}
}

func (n *recordingNotifier) Publish(event map[string]interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) snapshot() []map[string]interface{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]map[string]interface{}(nil), n.events...)
}

// ---- environment ----

// testEnv wires the full service stack over the in-memory fakes with the
// seed roles, permissions, and two active branches.
type testEnv struct {
	roleRepo     *memRoleRepo
	permRepo     *memPermissionRepo
	userRepo     *memUserRepo
	branchRepo   *memBranchRepo
	docRepo      *memDocumentRepo
	historyRepo  *memHistoryRepo
	activityRepo *memActivityRepo

	audit    AuditTrail
	resolver PermissionResolver
	guard    AccessGuard
	engine   StatusEngine
	bulk     BulkCoordinator
	roles    RoleService
	docs     DocumentService
}

func newTestEnv() *testEnv {
	users := newMemUserRepo()
	env := &testEnv{
		roleRepo:     newMemRoleRepo(users),
		permRepo:     newMemPermissionRepo(),
		userRepo:     users,
		branchRepo:   &memBranchRepo{},
		docRepo:      newMemDocumentRepo(),
		historyRepo:  &memHistoryRepo{},
		activityRepo: &memActivityRepo{},
	}

	env.permRepo.SeedDefaults()
	env.roleRepo.SeedDefaults()
	for roleName, permNames := range model.DefaultRolePermissions {
		role, err := env.roleRepo.FindByName(string(roleName))
		if err != nil {
			continue
		}
		names := make([]string, len(permNames))
		for i, p := range permNames {
			names[i] = string(p)
		}
		permissions, _ := env.permRepo.FindByNames(names)
		env.roleRepo.ReplacePermissions(nil, role, permissions)
	}

	env.branchRepo.Create(&model.Branch{BaCode: "1060", Name: "Branch 1060", RegionCode: "R1", IsActive: true})
	env.branchRepo.Create(&model.Branch{BaCode: "1061", Name: "Branch 1061", RegionCode: "R1", IsActive: true})

	runner := fakeTxRunner{}
	env.audit = NewAuditTrail(env.activityRepo)
	env.resolver = NewPermissionResolver(env.roleRepo, env.audit, runner)
	env.guard = NewAccessGuard(env.userRepo, env.branchRepo, env.docRepo, env.resolver)
	env.engine = NewStatusEngine(env.docRepo, env.historyRepo, env.audit, env.resolver, env.guard, runner, nil)
	env.bulk = NewBulkCoordinator(env.engine, env.audit)
	env.roles = NewRoleService(env.roleRepo, env.permRepo, env.userRepo, env.resolver, env.audit, runner)
	env.docs = NewDocumentService(env.docRepo, env.historyRepo, env.branchRepo, env.guard, env.resolver, env.audit, runner)
	return env
}

func (env *testEnv) addUser(username, branchBa string, roles ...model.RoleName) uuid.UUID {
	user := &model.User{
		Username: username,
		FullName: username,
		BranchBa: branchBa,
		IsActive: true,
	}
	env.userRepo.Create(user)
	for _, name := range roles {
		role, err := env.roleRepo.FindByName(string(name))
		if err != nil {
			panic("unknown seed role " + string(name))
		}
		env.roleRepo.AssignUserRole(nil, user.ID, role)
	}
	return user.ID
}

func (env *testEnv) addDocument(branchBa string, uploaderID uuid.UUID, status model.DocumentStatus) uint {
	doc := &model.Document{
		BranchBaCode: branchBa,
		UploaderID:   uploaderID,
		Status:       status,
		MtNumber:     "MT-001",
		Subject:      "Monthly transmittal",
		MonthYear:    "2024-01",
	}
	env.docRepo.Create(nil, doc)
	return doc.ID
}
