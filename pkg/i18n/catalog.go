package i18n

var en = map[string]string{
	"COMMON.VALIDATION_ERROR":     "Validation Error",
	"COMMON.INVALID_BODY":         "Request body could not be parsed",
	"COMMON.ALREADY_EXIST":        "Already Exists",
	"COMMON.UNKNOWN_ERROR":        "Unknown Error",
	"COMMON.STORE_UNAVAILABLE":    "Service temporarily unavailable, please retry",
	"COMMON.TOO_MANY_REQUESTS":    "Too many requests, slow down",
	"COMMON.FIELD_MUST_BE_FILLED": "{} field must be filled",
	"COMMON.FIELD_MUST_BE_TYPE":   "{} field must be {}",
	"COMMON.FIELD_MIN_LENGTH":     "{} must be at least {} characters",
	"COMMON.FIELD_MAX_LENGTH":     "{} must not exceed {} characters",
	"COMMON.FIELD_INVALID":        "{} field is invalid",

	"USERS.AUTH_ERROR":            "Email or Password wrong",
	"USERS.EMAIL_FORMAT_ERROR":    "email field must be a valid email format",
	"USERS.PASSWORD_LENGTH_ERROR": "password length must be greater than {}",
	"USERS.INACTIVE":              "User account is inactive",
	"USERS.NOT_FOUND":             "User not found",
	"USERS.REGISTRATION_CLOSED":   "Registration is only open until the first user exists",

	"AUTH.MISSING_TOKEN":          "Authentication token is required",
	"AUTH.INVALID_TOKEN":          "Authentication token is invalid",
	"AUTH.EXPIRED_TOKEN":          "Authentication token has expired",
	"AUTH.INSUFFICIENT_PRIVILEGE": "You do not have permission to perform this action",

	"ROLES.NOT_FOUND":          "Role not found",
	"ROLES.UNKNOWN_PERMISSION": "Unknown permission: {}",

	"CATEGORIES.NOT_FOUND": "Category not found",

	"AUDIT.INVALID_FILTER": "Invalid audit log filter: {}",
}

var tr = map[string]string{
	"COMMON.VALIDATION_ERROR":     "Doğrulama Hatası",
	"COMMON.INVALID_BODY":         "İstek gövdesi çözümlenemedi",
	"COMMON.ALREADY_EXIST":        "Zaten Var",
	"COMMON.UNKNOWN_ERROR":        "Bilinmeyen Hata",
	"COMMON.STORE_UNAVAILABLE":    "Servis geçici olarak kullanılamıyor, lütfen tekrar deneyin",
	"COMMON.TOO_MANY_REQUESTS":    "Çok fazla istek, lütfen yavaşlayın",
	"COMMON.FIELD_MUST_BE_FILLED": "{} alanı dolu olmalıdır",
	"COMMON.FIELD_MUST_BE_TYPE":   "{} alanı {} tipinde olmalıdır",
	"COMMON.FIELD_MIN_LENGTH":     "{} en az {} karakter olmalıdır",
	"COMMON.FIELD_MAX_LENGTH":     "{} en fazla {} karakter olabilir",
	"COMMON.FIELD_INVALID":        "{} alanı geçersiz",

	"USERS.AUTH_ERROR":            "Email veya Şifre hatalı",
	"USERS.EMAIL_FORMAT_ERROR":    "email alanı geçerli bir e-posta formatında olmalıdır",
	"USERS.PASSWORD_LENGTH_ERROR": "password uzunluğu {} karakterden büyük olmalıdır",
	"USERS.INACTIVE":              "Kullanıcı hesabı pasif",
	"USERS.NOT_FOUND":             "Kullanıcı bulunamadı",
	"USERS.REGISTRATION_CLOSED":   "Kayıt yalnızca ilk kullanıcı oluşturulana kadar açıktır",

	"AUTH.MISSING_TOKEN":          "Kimlik doğrulama anahtarı gerekli",
	"AUTH.INVALID_TOKEN":          "Kimlik doğrulama anahtarı geçersiz",
	"AUTH.EXPIRED_TOKEN":          "Kimlik doğrulama anahtarının süresi dolmuş",
	"AUTH.INSUFFICIENT_PRIVILEGE": "Bu işlem için yetkiniz yok",

	"ROLES.NOT_FOUND":          "Rol bulunamadı",
	"ROLES.UNKNOWN_PERMISSION": "Bilinmeyen yetki: {}",

	"CATEGORIES.NOT_FOUND": "Kategori bulunamadı",

	"AUDIT.INVALID_FILTER": "Geçersiz denetim kaydı filtresi: {}",
}
