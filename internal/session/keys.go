package session

// Named session keys.
const (
	KeyUserData                    = "userdata"
	KeyTemplate                    = "template"
	KeySubdomainData               = "subdomainData"
	KeyCurrentProject              = "currentProject"
	KeyCurrentSprint               = "currentSprint"
	KeyProjectSettings             = "projectsettings"
	KeyCurrentSubscriptions        = "currentSubscriptions"
	KeyLastTicketView              = "lastTicketView"
	KeyLastFilteredTicketTableView = "lastFilterdTicketTableView"
)

// DefaultKeysToDestroy is the set of keys cleared on logout before filters run.
func DefaultKeysToDestroy() []string {
	return []string{
		KeyUserData,
		KeyTemplate,
		KeySubdomainData,
		KeyCurrentProject,
		KeyCurrentSprint,
		KeyProjectSettings,
		KeyCurrentSubscriptions,
		KeyLastTicketView,
		KeyLastFilteredTicketTableView,
	}
}
