package hiddenclass

// NamedPropertyDescriptor records where a property's value lives and how it
// behaves, as spec.md §3.1 describes: a slot index into the object's value
// storage plus the property's flags. It carries no value itself — value
// storage belongs to the object representation, which is out of scope here
// (spec.md §1 Non-goals).
type NamedPropertyDescriptor struct {
	SlotIndex uint32
	Flags     PropertyFlags
}
