package memory

// ObserverFuncs adapts plain functions to the Observer interface; nil
// fields are skipped. Collaborators that care about one event register
// this instead of implementing all five methods.
type ObserverFuncs struct {
	MemoryStored        func(agent string, rec *Record)
	MemoryRetrieved     func(agent string, rec *Record)
	MemoryForgotten     func(agent string, key string)
	ConversationAdded   func(agent string, entry ConversationEntry)
	RelationshipUpdated func(agent string, rel *Relationship)
}

func (f ObserverFuncs) OnMemoryStored(agent string, rec *Record) {
	if f.MemoryStored != nil {
		f.MemoryStored(agent, rec)
	}
}

func (f ObserverFuncs) OnMemoryRetrieved(agent string, rec *Record) {
	if f.MemoryRetrieved != nil {
		f.MemoryRetrieved(agent, rec)
	}
}

func (f ObserverFuncs) OnMemoryForgotten(agent string, key string) {
	if f.MemoryForgotten != nil {
		f.MemoryForgotten(agent, key)
	}
}

func (f ObserverFuncs) OnConversationAdded(agent string, entry ConversationEntry) {
	if f.ConversationAdded != nil {
		f.ConversationAdded(agent, entry)
	}
}

func (f ObserverFuncs) OnRelationshipUpdated(agent string, rel *Relationship) {
	if f.RelationshipUpdated != nil {
		f.RelationshipUpdated(agent, rel)
	}
}
