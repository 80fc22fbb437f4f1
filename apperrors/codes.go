package apperrors

// Error codes surfaced to API clients.
const (
	CodeValidation = "VALIDATION_ERROR"

	CodeSelfRequest          = "SELF_REQUEST"
	CodeSenderNotFound       = "SENDER_NOT_FOUND"
	CodeReceiverNotFound     = "RECEIVER_NOT_FOUND"
	CodePostNotFound         = "POST_NOT_FOUND"
	CodeInvalidPostCategory  = "INVALID_POST_CATEGORY"
	CodeReceiverNotPostOwner = "RECEIVER_NOT_POST_OWNER"
	CodeDuplicateRequest     = "DUPLICATE_REQUEST"
	CodeConversationExists   = "CONVERSATION_EXISTS"

	CodeRequestNotFound         = "REQUEST_NOT_FOUND"
	CodeNotRequestReceiver      = "NOT_REQUEST_RECEIVER"
	CodeRequestAlreadyProcessed = "REQUEST_ALREADY_PROCESSED"
	CodeInvalidDecision         = "INVALID_DECISION"

	CodeConversationNotFound = "CONVERSATION_NOT_FOUND"
	CodeNotAParticipant      = "NOT_A_PARTICIPANT"

	CodeMessageNotFound         = "MESSAGE_NOT_FOUND"
	CodeCannotUpdateOwnMessage  = "CANNOT_UPDATE_OWN_MESSAGE"
	CodeInvalidStatus           = "INVALID_STATUS"
	CodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"

	CodeNotificationNotFound = "NOTIFICATION_NOT_FOUND"

	CodeAdminRequired  = "ADMIN_REQUIRED"
	CodeRequestInUse   = "REQUEST_IN_USE"
	CodeUserNotFound   = "USER_NOT_FOUND"
	CodeExportDisabled = "EXPORT_DISABLED"

	CodeUnauthorized = "UNAUTHORIZED"
)
