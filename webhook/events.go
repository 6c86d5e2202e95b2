package webhook

// Event types emitted by the platform
const (
	AccessPassIssued    = "ag.access_pass.issued"
	AccessPassActivated = "ag.access_pass.activated"
	AccessPassUpdated   = "ag.access_pass.updated"
	AccessPassSuspended = "ag.access_pass.suspended"
	AccessPassResumed   = "ag.access_pass.resumed"
	AccessPassUnlinked  = "ag.access_pass.unlinked"
	AccessPassDeleted   = "ag.access_pass.deleted"
	AccessPassExpired   = "ag.access_pass.expired"

	CardTemplateCreated             = "ag.card_template.created"
	CardTemplateUpdated             = "ag.card_template.updated"
	CardTemplateRequestedPublishing = "ag.card_template.requested_publishing"
	CardTemplatePublished           = "ag.card_template.published"

	CredentialProfileCreated            = "ag.credential_profile.created"
	CredentialProfileAttachedToTemplate = "ag.credential_profile.attached_to_template"
)

// EventTypes returns every event type the platform emits
func EventTypes() []string {
	return []string{
		AccessPassIssued, AccessPassActivated, AccessPassUpdated, AccessPassSuspended,
		AccessPassResumed, AccessPassUnlinked, AccessPassDeleted, AccessPassExpired,
		CardTemplateCreated, CardTemplateUpdated, CardTemplateRequestedPublishing, CardTemplatePublished,
		CredentialProfileCreated, CredentialProfileAttachedToTemplate,
	}
}
