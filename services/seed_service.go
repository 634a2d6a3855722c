package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dependify/DemoeCRM/config"
	"github.com/dependify/DemoeCRM/models"
	"github.com/dependify/DemoeCRM/utils"
)

// Demo dataset shape
const (
	demoConvertCount = 100
	demoCallCount    = 15
)

var (
	demoFirstNamesMale = []string{
		"Emmanuel", "Daniel", "Samuel", "David", "John", "Joseph", "Michael", "James",
		"Peter", "Paul", "Stephen", "Matthew", "Andrew", "Chinedu", "Chukwuemeka",
		"Obinna", "Ifeanyi", "Uchenna", "Uzoma", "Kelechi", "Olumide", "Olusegun",
		"Adeola", "Adebayo", "Ademola", "Yakubu", "Yusuf", "Ibrahim", "Bamidele",
		"Ayodele", "Kunle", "Segun", "Gbenga",
	}
	demoFirstNamesFemale = []string{
		"Mary", "Sarah", "Elizabeth", "Grace", "Joy", "Peace", "Patience", "Faith",
		"Hope", "Blessing", "Favour", "Chioma", "Chidinma", "Chiamaka", "Ngozi",
		"Nkechi", "Ifeoma", "Oluchi", "Adebimpe", "Adenike", "Aisha", "Fatima",
		"Ayomide", "Kemi", "Funmi", "Bimpe",
	}
	demoLastNames = []string{
		"Adeyemi", "Adeleke", "Adekunle", "Adesanya", "Adewale", "Ogunlesi",
		"Balogun", "Bankole", "Ojo", "Okonkwo", "Okorie", "Okoro", "Nnamdi",
		"Obi", "Eze", "Ezeani", "Ude", "Ugochukwu", "Okeke", "Chukwu",
		"Abdullahi", "Abubakar", "Adamu", "Ahmad", "Aliyu", "Bala",
		"Peters", "Johnson", "Williams",
	}
	demoStates = []string{
		"Lagos", "Oyo", "Ogun", "Ondo", "Osun", "Ekiti", "Kwara",
		"Kano", "Kaduna", "Katsina", "Rivers", "Delta", "Edo", "Enugu",
		"Anambra", "Imo", "Abia", "Akwa Ibom", "Cross River",
	}
	demoOccupations = []string{
		"Teacher", "Doctor", "Nurse", "Lawyer", "Engineer", "Banker",
		"Business Owner", "Trader", "Software Developer", "Student",
		"Civil Servant", "Entrepreneur", "Fashion Designer", "Driver",
	}
	demoPhonePrefixes = []string{"0803", "0805", "0806", "0810", "0813", "0814", "0903", "0708"}
	demoNotes         = []string{
		"Very interested in joining the church",
		"Has questions about baptism",
		"Family challenges, needs prayer support",
		"Enthusiastic about youth programs",
		"Wants to join house fellowship",
		"", "", "",
	}
)

var demoScripts = []models.CallScript{
	{
		Name:    "Welcome Call",
		Content: "Hello {name}, welcome to Grace Evangelical! We're thrilled you joined us. How can we support your spiritual journey?",
		Purpose: models.PurposeWelcome,
	},
	{
		Name:    "Follow-up Call",
		Content: "Hi {name}, this is {caller_name} from Grace Evangelical. Just checking in on you. Do you have any prayer requests?",
		Purpose: models.PurposeFollowup,
	},
	{
		Name:    "Service Invitation",
		Content: "Hello {name}, we'd love to invite you to our special service this Sunday. Pastor will be teaching on faith and miracles.",
		Purpose: models.PurposeInvitation,
	},
	{
		Name:    "Welfare Check",
		Content: "Hi {name}, we noticed you haven't been around for a while. Is everything okay? We're here to support you.",
		Purpose: models.PurposeWelfare,
	},
}

// DemoStats summarises the current dataset size
type DemoStats struct {
	Users      int64 `json:"users"`
	Converts   int64 `json:"converts"`
	Activities int64 `json:"activities"`
	Snapshots  int64 `json:"snapshots"`
	Alerts     int64 `json:"alerts"`
	Scripts    int64 `json:"scripts"`
	VoiceCalls int64 `json:"voice_calls"`
}

// InterfaceSeedService bootstraps the admin account and the demo dataset
type InterfaceSeedService interface {
	// EnsureAdmin creates the configured admin account if it is missing
	EnsureAdmin(ctx context.Context) error
	// SeedDemoData populates a representative demo dataset. A no-op when
	// converts already exist.
	SeedDemoData(ctx context.Context) error
	// ResetDemoData wipes every domain table and reseeds from scratch
	ResetDemoData(ctx context.Context) error
	GetDemoStats(ctx context.Context) (*DemoStats, error)
}

// SeedService generates the demo dataset
type SeedService struct {
	DB     *gorm.DB
	Config *config.Config
	Cache  InterfaceSnapshotCache
	rng    *rand.Rand
}

// NewSeedService creates a new seed service. The configured seed makes the
// generated dataset reproducible.
func NewSeedService(db *gorm.DB, cfg *config.Config, cache InterfaceSnapshotCache) InterfaceSeedService {
	return &SeedService{
		DB:     db,
		Config: cfg,
		Cache:  cache,
		rng:    utils.NewSeededRand(cfg.DemoSeed),
	}
}

// 1 EnsureAdmin creates the bootstrap admin account if missing
func (s *SeedService) EnsureAdmin(ctx context.Context) error {
	var existing models.User
	err := s.DB.WithContext(ctx).
		Where("email = ?", s.Config.DefaultAdminEmail).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	admin := &models.User{
		Name:     "Pastor Emmanuel Adeyemi",
		Email:    s.Config.DefaultAdminEmail,
		Role:     models.RoleClientAdmin,
		Phone:    s.randomPhone(),
		Location: "Lagos",
		IsActive: true,
		Password: s.Config.DefaultAdminPassword,
	}
	if err := s.DB.WithContext(ctx).Create(admin).Error; err != nil {
		return err
	}
	config.Info("created bootstrap admin", zap.String("email", admin.Email))
	return nil
}

// 2 SeedDemoData populates the demo dataset once
func (s *SeedService) SeedDemoData(ctx context.Context) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Convert{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return s.populate(ctx)
}

// 3 ResetDemoData wipes and reseeds the dataset
func (s *SeedService) ResetDemoData(ctx context.Context) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&models.VoiceCall{}, &models.CallScript{}, &models.Alert{},
			&models.HealthScoreSnapshot{}, &models.ActivityRecord{}, &models.Convert{},
		} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := s.EnsureAdmin(ctx); err != nil {
		return err
	}
	return s.populate(ctx)
}

// 4 GetDemoStats counts the rows in each domain table
func (s *SeedService) GetDemoStats(ctx context.Context) (*DemoStats, error) {
	stats := &DemoStats{}
	db := s.DB.WithContext(ctx)
	for model, dest := range map[interface{}]*int64{
		&models.User{}:                &stats.Users,
		&models.Convert{}:             &stats.Converts,
		&models.ActivityRecord{}:      &stats.Activities,
		&models.HealthScoreSnapshot{}: &stats.Snapshots,
		&models.Alert{}:               &stats.Alerts,
		&models.CallScript{}:          &stats.Scripts,
		&models.VoiceCall{}:           &stats.VoiceCalls,
	} {
		if err := db.Model(model).Count(dest).Error; err != nil {
			return nil, err
		}
	}
	return stats, nil
}

func (s *SeedService) populate(ctx context.Context) error {
	config.Info("populating demo data", zap.Int64("seed", s.Config.DemoSeed))

	workerIDs, err := s.seedStaff(ctx)
	if err != nil {
		return err
	}

	scripts := make([]models.CallScript, len(demoScripts))
	copy(scripts, demoScripts)
	for i := range scripts {
		scripts[i].IsActive = true
		if err := s.DB.WithContext(ctx).Create(&scripts[i]).Error; err != nil {
			return err
		}
	}

	convertService := NewConvertService(s.DB, s.Config)
	activityService := NewActivityService(s.DB, s.Config, s.Cache)
	stageService := NewStageService(s.DB, s.Config, s.Cache)
	callService := NewVoiceCallService(s.DB, s.Config, NewNoopCallEventPublisher(),
		NewRandomOutcomeStrategy(s.Config.DemoSeed), s.Cache)

	stageWeights := []struct {
		stage  models.ConvertStage
		weight float64
	}{
		{models.StageNew, 0.15},
		{models.StageInFollowup, 0.30},
		{models.StageInClasses, 0.20},
		{models.StageInHouseFellowship, 0.15},
		{models.StageEstablished, 0.10},
		{models.StageHandedOver, 0.05},
		{models.StageInactive, 0.05},
	}

	var convertIDs []uint
	for i := 0; i < demoConvertCount; i++ {
		person := s.randomPerson()
		var workerID *uint
		if len(workerIDs) > 0 {
			id := workerIDs[s.rng.Intn(len(workerIDs))]
			workerID = &id
		}

		convert, err := convertService.CreateConvert(ctx, &CreateConvertRequest{
			FirstName:        person.firstName,
			LastName:         person.lastName,
			Phone:            person.phone,
			Email:            person.email,
			City:             person.city,
			State:            person.state,
			Occupation:       person.occupation,
			Notes:            demoNotes[s.rng.Intn(len(demoNotes))],
			Source:           models.AllSources()[s.rng.Intn(len(models.AllSources()))],
			AssignedWorkerID: workerID,
		})
		if err != nil {
			return fmt.Errorf("seed convert: %w", err)
		}
		convertIDs = append(convertIDs, convert.ID)

		// Walk the convert to a weighted target stage through the real
		// ledger so history and derived state stay consistent
		target := s.weightedStage(stageWeights)
		if err := s.advanceTo(ctx, stageService, convert.ID, target); err != nil {
			return fmt.Errorf("seed stage history: %w", err)
		}

		if err := s.seedActivities(ctx, activityService, convert.ID); err != nil {
			return fmt.Errorf("seed activities: %w", err)
		}
	}

	for i := 0; i < demoCallCount; i++ {
		convertID := convertIDs[s.rng.Intn(len(convertIDs))]
		scriptID := scripts[s.rng.Intn(len(scripts))].ID
		call, err := callService.ScheduleCall(ctx, &ScheduleCallRequest{
			ConvertID: convertID,
			ScriptID:  &scriptID,
		})
		if err != nil {
			return fmt.Errorf("seed call: %w", err)
		}
		// Leave a third of the calls on the schedule
		if s.rng.Float64() < 0.66 {
			if _, err := callService.SimulateCall(ctx, call.ID); err != nil {
				return fmt.Errorf("seed call simulation: %w", err)
			}
		}
	}

	config.Info("demo data populated",
		zap.Int("converts", len(convertIDs)),
		zap.Int("scripts", len(scripts)))
	return nil
}

func (s *SeedService) seedStaff(ctx context.Context) ([]uint, error) {
	roles := []models.UserRole{
		models.RoleFollowupLeader, models.RoleFollowupWorker, models.RoleDataEntry,
		models.RoleMentor, models.RoleCounsellingLeader, models.RoleWelfareOfficer,
		models.RoleVoiceAgent,
	}

	var workerIDs []uint
	for i, role := range roles {
		email := fmt.Sprintf("%s%d@graceevangelical.demo", role, i+1)

		var existing models.User
		err := s.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		person := s.randomPerson()
		user := &models.User{
			Name:     person.firstName + " " + person.lastName,
			Email:    email,
			Role:     role,
			Phone:    person.phone,
			Location: person.city,
			IsActive: true,
			Password: s.Config.DefaultAdminPassword,
		}
		if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
			return nil, err
		}

		switch role {
		case models.RoleFollowupLeader, models.RoleFollowupWorker, models.RoleMentor:
			workerIDs = append(workerIDs, user.ID)
		}
	}
	return workerIDs, nil
}

// advanceTo walks the forward chain to the target stage, detouring through
// follow-up for the inactive target so the drop-out looks natural
func (s *SeedService) advanceTo(ctx context.Context, stageService InterfaceStageService, convertID uint, target models.ConvertStage) error {
	if target == models.StageNew {
		return nil
	}

	path := []models.ConvertStage{
		models.StageInFollowup, models.StageInClasses, models.StageInHouseFellowship,
		models.StageEstablished, models.StageHandedOver,
	}
	if target == models.StageInactive {
		path = []models.ConvertStage{models.StageInFollowup, models.StageInactive}
	}

	for _, stage := range path {
		if _, err := stageService.Transition(ctx, convertID, &StageTransitionRequest{ToStage: stage}); err != nil {
			return err
		}
		if stage == target {
			return nil
		}
	}
	return nil
}

func (s *SeedService) seedActivities(ctx context.Context, activityService InterfaceActivityService, convertID uint) error {
	count := s.rng.Intn(8)
	for i := 0; i < count; i++ {
		daysAgo := s.rng.Intn(90)
		timestamp := time.Now().AddDate(0, 0, -daysAgo)

		var req RecordActivityRequest
		switch s.rng.Intn(4) {
		case 0:
			req = RecordActivityRequest{Type: models.ActivityVisit, Outcome: models.OutcomeCompleted}
		case 1:
			outcome := models.OutcomeAttended
			if s.rng.Float64() < 0.3 {
				outcome = models.OutcomeMissed
			}
			req = RecordActivityRequest{Type: models.ActivityClassAttendance, Outcome: outcome}
		case 2:
			req = RecordActivityRequest{Type: models.ActivityFellowship, Outcome: models.OutcomeAttended}
		default:
			req = RecordActivityRequest{Type: models.ActivityNote, Outcome: "prayer request noted"}
		}
		req.Timestamp = &timestamp

		if _, err := activityService.Record(ctx, convertID, &req); err != nil {
			return err
		}
	}
	return nil
}

func (s *SeedService) weightedStage(weights []struct {
	stage  models.ConvertStage
	weight float64
}) models.ConvertStage {
	roll := s.rng.Float64()
	acc := 0.0
	for _, w := range weights {
		acc += w.weight
		if roll < acc {
			return w.stage
		}
	}
	return weights[len(weights)-1].stage
}

type demoPerson struct {
	firstName  string
	lastName   string
	phone      string
	email      string
	city       string
	state      string
	occupation string
}

func (s *SeedService) randomPerson() demoPerson {
	var firstName string
	if s.rng.Intn(2) == 0 {
		firstName = demoFirstNamesMale[s.rng.Intn(len(demoFirstNamesMale))]
	} else {
		firstName = demoFirstNamesFemale[s.rng.Intn(len(demoFirstNamesFemale))]
	}
	lastName := demoLastNames[s.rng.Intn(len(demoLastNames))]
	state := demoStates[s.rng.Intn(len(demoStates))]

	return demoPerson{
		firstName: firstName,
		lastName:  lastName,
		phone:     s.randomPhone(),
		email: fmt.Sprintf("%s.%s%d@gmail.com",
			strings.ToLower(firstName), strings.ToLower(lastName), 1+s.rng.Intn(99)),
		city:       state + " City",
		state:      state,
		occupation: demoOccupations[s.rng.Intn(len(demoOccupations))],
	}
}

func (s *SeedService) randomPhone() string {
	prefix := demoPhonePrefixes[s.rng.Intn(len(demoPhonePrefixes))]
	digits := make([]byte, 7)
	for i := range digits {
		digits[i] = byte('0' + s.rng.Intn(10))
	}
	return prefix + string(digits)
}
