package acs

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nanoncore/nano-access/cwmp"
	"github.com/nanoncore/nano-access/model"
)

// DeviceStore keeps the per-device records the ACS builds from Inform
// traffic, keyed by the composite identity key. Implementations return
// copies; callers never share memory with the store.
type DeviceStore interface {
	// Upsert merges an Inform-derived snapshot into the store. The
	// record is created on first contact and updated afterwards, never
	// duplicated. Returns the stored record.
	Upsert(snapshot model.CPEDevice) model.CPEDevice

	// MergeParameters folds freshly read parameter values into the
	// record's cache. Reports whether the device exists.
	MergeParameters(key string, params map[string]string) bool

	// Get returns the record for the composite key.
	Get(key string) (model.CPEDevice, bool)

	// List returns all records.
	List() []model.CPEDevice
}

// TaskStore queues RPC intents per device and settles them as the
// device's responses arrive.
type TaskStore interface {
	// Enqueue adds a task, filling ID, CommandKey, State and CreatedAt
	// when unset. Returns the stored task.
	Enqueue(task model.Task) model.Task

	// NextForDispatch runs the dispatch decision for one Inform behind
	// the store lock: read the device's tasks, decide, and mark a
	// pending pick in_progress. Atomicity here is what keeps
	// concurrent Informs from one device from double-dispatching.
	NextForDispatch(deviceKey string, inform *cwmp.Inform) Decision

	// CloseInProgress settles the device's in_progress task. Used for
	// response types that carry no command key.
	CloseInProgress(deviceKey string, state model.TaskState, lastError string) (model.Task, bool)

	// CloseByCommandKey settles the task carrying the command key,
	// whichever device queued it.
	CloseByCommandKey(commandKey string, state model.TaskState, lastError string) (model.Task, bool)

	// Tasks lists the device's tasks oldest first.
	Tasks(deviceKey string) []model.Task
}

// memoryDeviceStore is the mutex-guarded in-memory DeviceStore.
type memoryDeviceStore struct {
	mu      sync.RWMutex
	devices map[string]*model.CPEDevice
}

// NewMemoryDeviceStore returns an empty in-memory device store.
func NewMemoryDeviceStore() DeviceStore {
	return &memoryDeviceStore{devices: make(map[string]*model.CPEDevice)}
}

func (s *memoryDeviceStore) Upsert(snapshot model.CPEDevice) model.CPEDevice {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := snapshot.Identity.Key()
	record, ok := s.devices[key]
	if !ok {
		record = &model.CPEDevice{
			Identity:     snapshot.Identity,
			FirstContact: snapshot.LastInform,
			Parameters:   make(map[string]string),
		}
		if record.FirstContact.IsZero() {
			record.FirstContact = time.Now()
		}
		s.devices[key] = record
	}

	if snapshot.Manufacturer != "" {
		record.Manufacturer = snapshot.Manufacturer
	}
	if snapshot.SoftwareVersion != "" {
		record.SoftwareVersion = snapshot.SoftwareVersion
	}
	if snapshot.HardwareVersion != "" {
		record.HardwareVersion = snapshot.HardwareVersion
	}
	if snapshot.ConnectionRequestURL != "" {
		record.ConnectionRequestURL = snapshot.ConnectionRequestURL
	}
	if snapshot.ExternalIP != "" {
		record.ExternalIP = snapshot.ExternalIP
	}
	record.Online = true
	record.LastInform = snapshot.LastInform
	if record.LastInform.IsZero() {
		record.LastInform = time.Now()
	}
	for name, value := range snapshot.Parameters {
		record.Parameters[name] = value
	}

	return copyDevice(record)
}

func (s *memoryDeviceStore) MergeParameters(key string, params map[string]string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.devices[key]
	if !ok {
		return false
	}
	for name, value := range params {
		record.Parameters[name] = value
	}
	return true
}

func (s *memoryDeviceStore) Get(key string) (model.CPEDevice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.devices[key]
	if !ok {
		return model.CPEDevice{}, false
	}
	return copyDevice(record), true
}

func (s *memoryDeviceStore) List() []model.CPEDevice {
	s.mu.RLock()
	defer s.mu.RUnlock()

	devices := make([]model.CPEDevice, 0, len(s.devices))
	for _, record := range s.devices {
		devices = append(devices, copyDevice(record))
	}
	return devices
}

func copyDevice(record *model.CPEDevice) model.CPEDevice {
	device := *record
	device.Parameters = make(map[string]string, len(record.Parameters))
	for name, value := range record.Parameters {
		device.Parameters[name] = value
	}
	return device
}

// memoryTaskStore is the mutex-guarded in-memory TaskStore. Tasks are
// held per device in enqueue order, which is also dispatch order.
type memoryTaskStore struct {
	mu    sync.Mutex
	tasks map[string][]*model.Task
}

// NewMemoryTaskStore returns an empty in-memory task store.
func NewMemoryTaskStore() TaskStore {
	return &memoryTaskStore{tasks: make(map[string][]*model.Task)}
}

func (s *memoryTaskStore) Enqueue(task model.Task) model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.CommandKey == "" {
		task.CommandKey = uuid.NewString()
	}
	if task.State == "" {
		task.State = model.TaskPending
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}

	stored := task
	s.tasks[task.DeviceKey] = append(s.tasks[task.DeviceKey], &stored)
	return task
}

func (s *memoryTaskStore) NextForDispatch(deviceKey string, inform *cwmp.Inform) Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.tasks[deviceKey]
	snapshot := make([]model.Task, 0, len(queue))
	for _, task := range queue {
		snapshot = append(snapshot, *task)
	}

	decision := Dispatch(snapshot, inform)
	if decision.Task == nil {
		return decision
	}

	for _, task := range queue {
		if task.ID != decision.Task.ID {
			continue
		}
		if task.State == model.TaskPending {
			task.State = model.TaskInProgress
			task.DispatchedAt = time.Now()
		}
		picked := *task
		decision.Task = &picked
		break
	}
	return decision
}

func (s *memoryTaskStore) CloseInProgress(deviceKey string, state model.TaskState, lastError string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, task := range s.tasks[deviceKey] {
		if task.State == model.TaskInProgress {
			return closeTask(task, state, lastError), true
		}
	}
	return model.Task{}, false
}

func (s *memoryTaskStore) CloseByCommandKey(commandKey string, state model.TaskState, lastError string) (model.Task, bool) {
	if commandKey == "" {
		return model.Task{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, queue := range s.tasks {
		for _, task := range queue {
			if task.CommandKey == commandKey {
				return closeTask(task, state, lastError), true
			}
		}
	}
	return model.Task{}, false
}

func (s *memoryTaskStore) Tasks(deviceKey string) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.tasks[deviceKey]
	tasks := make([]model.Task, 0, len(queue))
	for _, task := range queue {
		tasks = append(tasks, *task)
	}
	return tasks
}

func closeTask(task *model.Task, state model.TaskState, lastError string) model.Task {
	task.State = state
	task.CompletedAt = time.Now()
	task.LastError = lastError
	return *task
}
