package dialogue

// Fixed reply texts. Replies are plain text; the transport layer owns any
// platform formatting.
const (
	msgWelcome = "¡Hola! Soy el asistente de TOP (Tu Oferta Profesional) y te ayudo a encontrar trabajo."

	msgGreetingWithJob = "¡Hola de nuevo! En TOP (Tu Oferta Profesional) seguimos con tu interés en la vacante %s. Pregúntame lo que necesites saber o escribe \"quiero postularme\" para iniciar tu postulación."

	msgClarify = "No estoy seguro de haberte entendido. Puedo mostrarte vacantes disponibles, darte detalles de una vacante o ayudarte a postularte. También respondo dudas sobre cómo funciona TOP. ¿Qué te gustaría hacer?"

	msgAlreadyApplied = "Veo que ya te has postulado a la vacante %s. Tu postulación sigue registrada; no es necesario postularte de nuevo."

	msgJobInfoClose = "¿Hazme una pregunta sobre la vacante o escribe 'quiero postularme' para iniciar el proceso de postulación?"

	msgNoJobSelected = "Aún no hemos elegido una vacante. Escribe \"vacantes\" para ver las opciones disponibles."

	msgJobUnavailable = "Lo siento, la vacante %s ya no está disponible. Escribe \"vacantes\" para ver otras opciones."

	msgNoListings = "Por el momento no tengo vacantes disponibles. Vuelve a intentarlo más tarde, publicamos nuevas oportunidades todos los días."

	msgNoMoreListings = "Por ahora no tengo más vacantes para mostrarte. Responde con el NÚMERO de alguna de las opciones anteriores o vuelve a intentarlo más tarde."

	msgListingIntro = "Estas son algunas vacantes disponibles:"

	msgListingMoreIntro = "Aquí tienes más opciones:"

	msgListingPrompt = "Responde con el NÚMERO de la vacante que te interesa"

	msgListingMore = " o escribe \"más\" para ver otras opciones."

	msgJobNotFound = "No encontré la vacante con el número %s. Escribe \"vacantes\" para ver las opciones disponibles."

	msgSelectionRetry = "No reconocí esa opción. Responde con un número del 1 al %d."

	msgAskName = "Para postularte necesito algunos datos. ¿Cuál es tu nombre?"

	msgAskLastName = "Gracias. ¿Cuál es tu apellido?"

	msgAskPhone = "¿A qué número de teléfono te podemos contactar? Escríbelo a 10 dígitos."

	msgBadName = "No entendí el nombre. Escríbelo usando solo letras, por favor."

	msgBadPhone = "Ese número no parece válido. Escríbelo a 10 dígitos, por ejemplo 5512345678."

	msgContactDone = "¡Gracias, %s! Ya tengo tus datos de contacto."

	msgNoInterviewDays = "Por ahora no hay fechas de entrevista disponibles para esta vacante. Intenta de nuevo más tarde o escribe \"vacantes\" para ver otras opciones."

	msgOfferDates = "Para la vacante %s, estas son las próximas fechas disponibles para una entrevista:"

	msgDatePrompt = "Por favor, responde con el NÚMERO de la fecha que prefieres."

	msgOfferTimes = "Perfecto, %s. Ahora elige el horario para tu entrevista:"

	msgTimePrompt = "Responde con el NÚMERO del horario que prefieres."

	msgApplicationDone = "¡Listo! Tu postulación a la vacante %s quedó registrada. Tu entrevista es el %s a las %s. El equipo de la empresa te contactará para confirmarla. ¡Mucho éxito!"

	msgApplicationDoneNoTime = "¡Listo! Tu postulación a la vacante %s quedó registrada. Tu entrevista es el %s. El equipo de la empresa te contactará para confirmar el horario. ¡Mucho éxito!"

	msgFollowUpInterview = "Tu entrevista para la vacante %s está agendada para el %s a las %s. Si necesitas cambiarla, escríbelo por aquí y con gusto te ayudamos."

	msgFollowUpInterviewNoTime = "Tu entrevista para la vacante %s está agendada para el %s. Si necesitas cambiarla, escríbelo por aquí y con gusto te ayudamos."

	msgFollowUpNoApplications = "Todavía no tienes postulaciones registradas. Escribe \"vacantes\" y te muestro las opciones disponibles."

	msgFollowUpApplicationsIntro = "Estas son tus postulaciones:"

	msgFAQFree = "El servicio de TOP (Tu Oferta Profesional) es completamente gratuito para ti. Nunca te pediremos dinero por postularte ni por agendar una entrevista."

	msgFAQResume = "No necesitas CV para postularte con nosotros. Solo te pedimos tu nombre y un teléfono de contacto; la empresa te conocerá directamente en la entrevista."

	msgFAQAbout = "TOP (Tu Oferta Profesional) es un servicio que te conecta con vacantes de empresas en México. Te muestro las opciones disponibles, resuelvo tus dudas y agendo tu entrevista, todo por este chat."

	msgFAQTiming = "Después de postularte, la empresa suele contactarte en un plazo de uno a tres días hábiles para confirmar tu entrevista. Si no recibes noticias, escríbenos por aquí."

	msgFAQHowToApply = "Postularte es muy fácil: elige una vacante, escribe \"quiero postularme\" y yo te guío paso a paso para registrar tus datos y agendar tu entrevista."

	msgFAQTrust = "Sí, puedes confiar en nosotros. TOP (Tu Oferta Profesional) trabaja directamente con las empresas que publican las vacantes y nunca te pedirá dinero ni datos bancarios."

	msgFAQDefault = "TOP (Tu Oferta Profesional) te ayuda a encontrar trabajo sin costo: te muestro vacantes, respondo tus preguntas y agendo tu entrevista por este mismo chat. Pregúntame lo que necesites o escribe \"vacantes\" para empezar."
)
