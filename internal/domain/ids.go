package domain

// ActivityName is the unique, human-readable key of an activity.
type ActivityName string
