package services

import (
	"OcuCare/models"
	"context"
	"io"
	"sort"
	"sync"
)

// Function-field mocks: each test sets only the behaviour it cares about.
// Unset fields return zero values.

type mockUserDirectory struct {
	GetByIDFn    func(ctx context.Context, id string) (*models.UserProfile, error)
	GetByEmailFn func(ctx context.Context, email string) (*models.UserProfile, error)
	CreateFn     func(ctx context.Context, profile *models.UserProfile) error
	UpdateFn     func(ctx context.Context, profile *models.UserProfile) error
	FindDoctorFn func(ctx context.Context) (*models.UserProfile, error)
}

var _ UserDirectory = (*mockUserDirectory)(nil)

func (m *mockUserDirectory) GetByID(ctx context.Context, id string) (*models.UserProfile, error) {
	if m.GetByIDFn == nil {
		return nil, nil
	}
	return m.GetByIDFn(ctx, id)
}

func (m *mockUserDirectory) GetByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	if m.GetByEmailFn == nil {
		return nil, nil
	}
	return m.GetByEmailFn(ctx, email)
}

func (m *mockUserDirectory) Create(ctx context.Context, profile *models.UserProfile) error {
	if m.CreateFn == nil {
		return nil
	}
	return m.CreateFn(ctx, profile)
}

func (m *mockUserDirectory) Update(ctx context.Context, profile *models.UserProfile) error {
	if m.UpdateFn == nil {
		return nil
	}
	return m.UpdateFn(ctx, profile)
}

func (m *mockUserDirectory) FindDoctor(ctx context.Context) (*models.UserProfile, error) {
	if m.FindDoctorFn == nil {
		return nil, nil
	}
	return m.FindDoctorFn(ctx)
}

type mockResultStore struct {
	CreateFn        func(ctx context.Context, result *models.PatientResult) error
	GetByIDFn       func(ctx context.Context, id string) (*models.PatientResult, error)
	ListByUserFn    func(ctx context.Context, userID string) ([]models.PatientResult, error)
	DeleteFn        func(ctx context.Context, id string) error
	MarkConsultedFn func(ctx context.Context, resultID, conversationID string) error
}

var _ ResultStore = (*mockResultStore)(nil)

func (m *mockResultStore) Create(ctx context.Context, result *models.PatientResult) error {
	if m.CreateFn == nil {
		return nil
	}
	return m.CreateFn(ctx, result)
}

func (m *mockResultStore) GetByID(ctx context.Context, id string) (*models.PatientResult, error) {
	if m.GetByIDFn == nil {
		return nil, nil
	}
	return m.GetByIDFn(ctx, id)
}

func (m *mockResultStore) ListByUser(ctx context.Context, userID string) ([]models.PatientResult, error) {
	if m.ListByUserFn == nil {
		return nil, nil
	}
	return m.ListByUserFn(ctx, userID)
}

func (m *mockResultStore) Delete(ctx context.Context, id string) error {
	if m.DeleteFn == nil {
		return nil
	}
	return m.DeleteFn(ctx, id)
}

func (m *mockResultStore) MarkConsulted(ctx context.Context, resultID, conversationID string) error {
	if m.MarkConsultedFn == nil {
		return nil
	}
	return m.MarkConsultedFn(ctx, resultID, conversationID)
}

// fakeConversationStore is a stateful in-memory ConversationStore. It mirrors
// the repository semantics closely enough to exercise the keyed upsert, the
// ordered log and the summary invariant from the service layer.
type fakeConversationStore struct {
	mu            sync.Mutex
	conversations map[string]*models.Conversation
	messages      map[string][]models.Message
}

var _ ConversationStore = (*fakeConversationStore)(nil)

func newFakeConversationStore() *fakeConversationStore {
	return &fakeConversationStore{
		conversations: make(map[string]*models.Conversation),
		messages:      make(map[string][]models.Message),
	}
}

func (f *fakeConversationStore) GetByPatientID(ctx context.Context, patientID string) (*models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	conversation, ok := f.conversations[patientID]
	if !ok {
		return nil, nil
	}
	copied := *conversation
	return &copied, nil
}

func (f *fakeConversationStore) CreateIfAbsent(ctx context.Context, conversation *models.Conversation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.conversations[conversation.PatientID]; ok {
		return nil
	}
	copied := *conversation
	f.conversations[conversation.PatientID] = &copied
	return nil
}

func (f *fakeConversationStore) AppendMessage(ctx context.Context, message *models.Message, senderName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	conversation, ok := f.conversations[message.ConversationID]
	if !ok {
		return ErrNotFound
	}
	f.messages[message.ConversationID] = append(f.messages[message.ConversationID], *message)
	conversation.LastSenderName = senderName
	conversation.LastMessageText = message.Text
	conversation.LastMessageTimestamp = message.Timestamp
	return nil
}

// ListMessages orders by timestamp ascending with id as the tiebreaker,
// matching the store contract rather than insertion order.
func (f *fakeConversationStore) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	messages := append([]models.Message(nil), f.messages[conversationID]...)
	sort.Slice(messages, func(i, j int) bool {
		if messages[i].Timestamp.Equal(messages[j].Timestamp) {
			return messages[i].ID < messages[j].ID
		}
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
	return messages, nil
}

func (f *fakeConversationStore) ListAll(ctx context.Context) ([]models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]models.Conversation, 0, len(f.conversations))
	for _, conversation := range f.conversations {
		all = append(all, *conversation)
	}
	return all, nil
}

func (f *fakeConversationStore) MarkMessageRead(ctx context.Context, conversationID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.messages[conversationID] {
		if f.messages[conversationID][i].ID == messageID {
			f.messages[conversationID][i].Read = true
			return nil
		}
	}
	return ErrNotFound
}

type mockCallStore struct {
	GetFn          func(ctx context.Context, patientID string) (*models.CallNotification, error)
	SaveFn         func(ctx context.Context, notification *models.CallNotification) error
	UpdateStatusFn func(ctx context.Context, patientID, status string) error
	DeleteFn       func(ctx context.Context, patientID string) error
}

var _ CallStore = (*mockCallStore)(nil)

func (m *mockCallStore) Get(ctx context.Context, patientID string) (*models.CallNotification, error) {
	if m.GetFn == nil {
		return nil, nil
	}
	return m.GetFn(ctx, patientID)
}

func (m *mockCallStore) Save(ctx context.Context, notification *models.CallNotification) error {
	if m.SaveFn == nil {
		return nil
	}
	return m.SaveFn(ctx, notification)
}

func (m *mockCallStore) UpdateStatus(ctx context.Context, patientID, status string) error {
	if m.UpdateStatusFn == nil {
		return nil
	}
	return m.UpdateStatusFn(ctx, patientID, status)
}

func (m *mockCallStore) Delete(ctx context.Context, patientID string) error {
	if m.DeleteFn == nil {
		return nil
	}
	return m.DeleteFn(ctx, patientID)
}

type mockBlobStorage struct {
	UploadFromReaderFn func(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error)
	DeleteFileFn       func(ctx context.Context, objectName string) error
	GetPresignedURLFn  func(ctx context.Context, objectName string) (string, error)
}

var _ BlobStorage = (*mockBlobStorage)(nil)

func (m *mockBlobStorage) UploadFromReader(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	if m.UploadFromReaderFn == nil {
		return objectName, nil
	}
	return m.UploadFromReaderFn(ctx, objectName, reader, size, contentType)
}

func (m *mockBlobStorage) DeleteFile(ctx context.Context, objectName string) error {
	if m.DeleteFileFn == nil {
		return nil
	}
	return m.DeleteFileFn(ctx, objectName)
}

func (m *mockBlobStorage) GetPresignedURL(ctx context.Context, objectName string) (string, error) {
	if m.GetPresignedURLFn == nil {
		return "https://storage.local/" + objectName, nil
	}
	return m.GetPresignedURLFn(ctx, objectName)
}

type mockPublisher struct {
	mu       sync.Mutex
	messages []models.Message
	calls    []*models.CallNotification
	fail     error
}

var _ Publisher = (*mockPublisher)(nil)

func (m *mockPublisher) PublishMessage(ctx context.Context, conversationID string, message models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.messages = append(m.messages, message)
	return nil
}

func (m *mockPublisher) PublishCallStatus(ctx context.Context, patientID string, notification *models.CallNotification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.calls = append(m.calls, notification)
	return nil
}

type mockNotifier struct {
	mu       sync.Mutex
	requests []string
	fail     error
}

var _ Notifier = (*mockNotifier)(nil)

func (m *mockNotifier) ConsultationRequested(email, patientName, resultLabel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.requests = append(m.requests, patientName+"/"+resultLabel)
	return nil
}
