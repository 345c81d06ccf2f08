package handlers

// User-facing response messages, kept in one place so handlers stay uniform.
const (
	msgRouteNotFound = "Route not found"

	msgValidationFailed = "Validation failed"

	msgSignupSuccess   = "Account created successfully"
	msgLoginSuccess    = "Login successful"
	msgUserExists      = "User already exists with this email"
	msgInvalidCreds    = "Invalid email or password"
	msgTokenMissing    = "No authentication token, access denied"
	msgTokenInvalid    = "Token is not valid"
	msgTooManyLogins   = "Too many login attempts, try again later."
	msgTooManyRequests = "Too many requests from this IP, please try again later."
	msgInternalError   = "Internal server error"
	msgServerRunning   = "Server is running"

	msgUploadSuccess    = "Document uploaded successfully"
	msgUploadFailed     = "Failed to upload document"
	msgDeleteSuccess    = "Document deleted successfully"
	msgDeleteFailed     = "Failed to delete document"
	msgDocumentNotFound = "Document not found"
	msgNoFile           = "No file uploaded"
	msgInvalidFormat    = "Invalid file format. Only PDF files are allowed"
	msgFileTooLarge     = "File size must be less than 2MB"
	msgFetchFailed      = "Failed to fetch documents"
	msgExtractionFailed = "Could not extract text from PDF"
	msgDocumentsFetched = "Documents fetched successfully"

	msgDocumentsRequired = "Both resume and job description must be uploaded before starting a chat"
	msgChatMissingFields = "chatId and message are required"
	msgChatNotFound      = "Chat not found"
	msgChatStartFailed   = "Failed to start chat"
	msgChatSendFailed    = "Failed to process message"

	msgEmailRequired    = "Email is required"
	msgEmailInvalid     = "Please provide a valid email"
	msgPasswordRequired = "Password is required"
	msgPasswordMin      = "Password must be at least 6 characters"
	msgNameRequired     = "Name is required"
	msgNameMin          = "Name must be at least 2 characters"
)
