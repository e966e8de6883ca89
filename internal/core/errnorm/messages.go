package errnorm

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"
)

// Ключи сообщений. Английский текст служит и ключом, и переводом по умолчанию.
const (
	MsgBadRequest         = "Invalid request"
	MsgUnauthorized       = "Please sign in to your account"
	MsgForbidden          = "You do not have access to this section"
	MsgNotFound           = "The requested resource was not found"
	MsgUnprocessable      = "The submitted data is invalid"
	MsgServerError        = "A server error occurred. Please try again later"
	MsgBadGateway         = "Error communicating with the server"
	MsgServiceUnavailable = "Service unavailable"
	MsgGatewayTimeout     = "The connection to the server timed out"
	MsgStatus             = "Error: %s"
	MsgGeneric            = "An error occurred"
	MsgTimeout            = "The request was cancelled because it took too long"
	MsgNetwork            = "Connection to the server failed. Please check your internet connection."
	MsgUnknown            = "An unknown error occurred"
	MsgValidation         = "Validation error"

	MsgShortNotFound        = "Not found"
	MsgRequestTimeout       = "The request timed out"
	MsgInvalidInput         = "Invalid input"
	MsgRequiredField        = "This field is required"
	MsgInvalidEmail         = "Invalid email"
	MsgInvalidPhone         = "Invalid phone number"
	MsgPasswordTooShort     = "The password is too short"
	MsgPasswordsMismatch    = "The passwords do not match"
	MsgInvalidCredentials   = "Wrong username or password"
	MsgTokenExpired         = "Your session has expired"
	MsgUserNotFound         = "User not found"
	MsgEmailExists          = "This email is already registered"
	MsgPropertyNotFound     = "Property not found"
	MsgPropertyExists       = "This property is already registered"
	MsgLocationNotFound     = "Your location could not be determined"
	MsgFieldRequired        = "%s is required"
	MsgFieldInvalid         = "%s is invalid"
	MsgContactSent          = "Your message was sent successfully"
	MsgMessageSent          = "Message sent successfully"
	MsgBookmarkAdded        = "Added to bookmarks"
	MsgBookmarkRemoved      = "Removed from bookmarks"
	MsgLoadMoreLimitReached = "All available results are loaded"

	// Тексты уведомлений о сбоях выборки
	MsgFetchServer     = "Server error. Please try again later."
	MsgFetchNoResults  = "No properties were found"
	MsgFetchNetwork    = "Error connecting to the server"
	MsgFetchGeneral    = "Error loading properties: %s"
	MsgLoadMoreTooLong = "Loading took too long. Please try again."
)

var translations = map[language.Tag]map[string]string{
	language.Persian: {
		MsgBadRequest:           "درخواست نامعتبر است",
		MsgUnauthorized:         "لطفاً وارد حساب کاربری خود شوید",
		MsgForbidden:            "شما دسترسی به این بخش ندارید",
		MsgNotFound:             "منبع مورد نظر یافت نشد",
		MsgUnprocessable:        "اطلاعات ارسالی نامعتبر است",
		MsgServerError:          "خطای سرور رخ داد. لطفاً بعداً تلاش کنید",
		MsgBadGateway:           "خطا در ارتباط با سرور",
		MsgServiceUnavailable:   "سرویس در دسترس نیست",
		MsgGatewayTimeout:       "زمان اتصال به سرور به پایان رسید",
		MsgStatus:               "خطا: %s",
		MsgGeneric:              "خطایی رخ داد",
		MsgTimeout:              "درخواست به دلیل زمان‌بر بودن لغو شد",
		MsgNetwork:              "خطا در اتصال به سرور. لطفاً اتصال اینترنت خود را بررسی کنید.",
		MsgUnknown:              "خطای نامشخص رخ داد",
		MsgValidation:           "خطای اعتبارسنجی",
		MsgShortNotFound:        "یافت نشد",
		MsgRequestTimeout:       "زمان درخواست به پایان رسید",
		MsgInvalidInput:         "ورودی نامعتبر است",
		MsgRequiredField:        "این فیلد الزامی است",
		MsgInvalidEmail:         "ایمیل نامعتبر است",
		MsgInvalidPhone:         "شماره تلفن نامعتبر است",
		MsgPasswordTooShort:     "رمز عبور کوتاه است",
		MsgPasswordsMismatch:    "رمزهای عبور مطابقت ندارند",
		MsgInvalidCredentials:   "نام کاربری یا رمز عبور اشتباه است",
		MsgTokenExpired:         "جلسه شما منقضی شده است",
		MsgUserNotFound:         "کاربر یافت نشد",
		MsgEmailExists:          "این ایمیل قبلاً ثبت شده است",
		MsgPropertyNotFound:     "ملک یافت نشد",
		MsgPropertyExists:       "این ملک قبلاً ثبت شده است",
		MsgLocationNotFound:     "موقعیت یافت نشد",
		MsgFieldRequired:        "%s الزامی است",
		MsgFieldInvalid:         "%s معتبر نیست",
		MsgContactSent:          "پیام شما با موفقیت ارسال شد",
		MsgMessageSent:          "پیام با موفقیت ارسال شد",
		MsgBookmarkAdded:        "به نشان‌شده‌ها اضافه شد",
		MsgBookmarkRemoved:      "از نشان‌شده‌ها حذف شد",
		MsgLoadMoreLimitReached: "همه نتایج موجود بارگذاری شد",
		MsgFetchServer:          "خطا در سرور. لطفاً بعداً تلاش کنید.",
		MsgFetchNoResults:       "املاکی یافت نشد",
		MsgFetchNetwork:         "خطا در اتصال به سرور",
		MsgFetchGeneral:         "خطا در دریافت املاک: %s",
		MsgLoadMoreTooLong:      "بارگذاری بیش از حد طول کشید. لطفاً دوباره تلاش کنید.",
	},
	language.Russian: {
		MsgBadRequest:           "Некорректный запрос",
		MsgUnauthorized:         "Пожалуйста, войдите в аккаунт",
		MsgForbidden:            "У вас нет доступа к этому разделу",
		MsgNotFound:             "Запрошенный ресурс не найден",
		MsgUnprocessable:        "Отправленные данные некорректны",
		MsgServerError:          "Ошибка сервера. Попробуйте позже",
		MsgBadGateway:           "Ошибка связи с сервером",
		MsgServiceUnavailable:   "Сервис недоступен",
		MsgGatewayTimeout:       "Время ожидания сервера истекло",
		MsgStatus:               "Ошибка: %s",
		MsgGeneric:              "Произошла ошибка",
		MsgTimeout:              "Запрос отменен, так как выполнялся слишком долго",
		MsgNetwork:              "Не удалось подключиться к серверу. Проверьте подключение к интернету.",
		MsgUnknown:              "Произошла неизвестная ошибка",
		MsgValidation:           "Ошибка валидации",
		MsgShortNotFound:        "Не найдено",
		MsgRequestTimeout:       "Время запроса истекло",
		MsgInvalidInput:         "Некорректный ввод",
		MsgRequiredField:        "Это поле обязательно",
		MsgInvalidEmail:         "Некорректный email",
		MsgInvalidPhone:         "Некорректный номер телефона",
		MsgPasswordTooShort:     "Слишком короткий пароль",
		MsgPasswordsMismatch:    "Пароли не совпадают",
		MsgInvalidCredentials:   "Неверное имя пользователя или пароль",
		MsgTokenExpired:         "Сессия истекла",
		MsgUserNotFound:         "Пользователь не найден",
		MsgEmailExists:          "Этот email уже зарегистрирован",
		MsgPropertyNotFound:     "Объект не найден",
		MsgPropertyExists:       "Этот объект уже зарегистрирован",
		MsgLocationNotFound:     "Не удалось определить ваше местоположение",
		MsgFieldRequired:        "Поле %s обязательно",
		MsgFieldInvalid:         "Поле %s заполнено некорректно",
		MsgContactSent:          "Ваше сообщение отправлено",
		MsgMessageSent:          "Сообщение успешно отправлено",
		MsgBookmarkAdded:        "Добавлено в закладки",
		MsgBookmarkRemoved:      "Удалено из закладок",
		MsgLoadMoreLimitReached: "Загружены все доступные результаты",
		MsgFetchServer:          "Ошибка сервера. Попробуйте позже.",
		MsgFetchNoResults:       "Объекты не найдены",
		MsgFetchNetwork:         "Ошибка подключения к серверу",
		MsgFetchGeneral:         "Ошибка загрузки объектов: %s",
		MsgLoadMoreTooLong:      "Загрузка заняла слишком много времени. Попробуйте еще раз.",
	},
}

var supported = []language.Tag{language.Persian, language.English, language.Russian}

// newCatalog собирает каталог. Для английского ключ совпадает с текстом.
func newCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range translations {
		for key, text := range msgs {
			_ = b.SetString(tag, key, text)
		}
	}
	for _, key := range knownKeys() {
		_ = b.SetString(language.English, key, key)
	}
	return b
}

func knownKeys() []string {
	keys := make([]string, 0, len(translations[language.Persian]))
	for k := range translations[language.Persian] {
		keys = append(keys, k)
	}
	return keys
}

// knownMessages - подстроки сообщений бэкенда, которые заменяются локализованным текстом.
// Более конкретные строки идут раньше общих.
var knownMessages = []struct {
	match string
	key   string
	kind  string
}{
	{"property not found", MsgPropertyNotFound, ""},
	{"property already exists", MsgPropertyExists, ""},
	{"user not found", MsgUserNotFound, ""},
	{"email already exists", MsgEmailExists, ""},
	{"invalid credentials", MsgInvalidCredentials, ""},
	{"token expired", MsgTokenExpired, ""},
	{"internal server error", MsgServerError, ""},
	{"service unavailable", MsgServiceUnavailable, ""},
	{"request timeout", MsgRequestTimeout, "timeout"},
	{"network error", MsgNetwork, "network"},
	{"not found", MsgShortNotFound, ""},
	{"unauthorized", MsgUnauthorized, ""},
	{"forbidden", MsgForbidden, ""},
	{"bad request", MsgBadRequest, ""},
	{"invalid input", MsgInvalidInput, ""},
	{"required field", MsgRequiredField, ""},
	{"invalid email", MsgInvalidEmail, ""},
	{"invalid phone", MsgInvalidPhone, ""},
	{"password too short", MsgPasswordTooShort, ""},
	{"passwords do not match", MsgPasswordsMismatch, ""},
}
