package catalog

func codingPath() LearningPath {
	return LearningPath{Kind: PathCoding, Steps: []LearningStep{
		{
			ID:        "welcome",
			Title:     "Welcome to Coding!",
			Emoji:     "🤖",
			BlockType: "Introduction",
			IntroductionPrompt: `You are a friendly and encouraging AI coding coach. Your audience is a complete beginner.
1. Welcome them warmly to the world of coding.
2. Explain that coding is like giving instructions to a computer. Use a simple, fun analogy (e.g., teaching a robot, writing a recipe for a cake).
3. Reassure them that it's okay to not know anything yet and that you'll guide them step-by-step.
4. Briefly mention they'll learn about giving commands, storing information, and making decisions in code.
5. End with an exciting call to action like, "Ready to write your first instruction?"`,
			ChallengeDescription: "For your first task, just tell me what you'd like to learn about coding, or simply say 'hello' to get started!",
			EvaluationPreamble:   "The user is introducing themselves. Respond with a very friendly and encouraging message. Welcome them by name if they provide it. Keep it short and sweet, then tell them to press 'Next' to see their first real concept.",
			Placeholder:          "Type 'hello' or what you're excited to learn!",
			EstimatedMinutes:     5,
			Points:               5,
		},
		{
			ID:                   "variables",
			Title:                "Storing Information",
			Emoji:                "📦",
			BlockType:            "Variables",
			IntroductionPrompt:   "Explain what a 'variable' is in programming. Use the analogy of a labeled box or container where you can store information (like numbers, text, or true/false values). Emphasize that you give the box a name (the variable name) so you can easily find and use what's inside later.",
			ChallengeDescription: "Imagine you have a box named 'score' and you want to put the number 100 inside it. How would you write that as a simple instruction?",
			EvaluationPreamble:   "The user is being asked to declare a variable. They should write something like 'score = 100' or 'let score = 100'. Evaluate if their answer correctly assigns the value 100 to a variable named score.",
			Placeholder:          "score = 100",
			EstimatedMinutes:     10,
			Points:               10,
		},
		{
			ID:                   "conditionals",
			Title:                "Making Decisions",
			Emoji:                "🤔",
			BlockType:            "If/Else Statements",
			IntroductionPrompt:   "Explain 'if/else' conditional statements. Use the analogy of making a decision based on a condition. For example: 'IF it is raining, THEN I will take an umbrella, ELSE I will wear sunglasses.' Show how this allows a program to react differently to different situations.",
			ChallengeDescription: "Write a simple 'if' statement to check if a 'health' variable is less than 10. If it is, the instruction should be to 'use a potion'.",
			EvaluationPreamble:   "The user needs to write a simple conditional. They should write something like 'if health < 10 then use potion'. Check if they have the core components: an 'if', a condition (health < 10), and an action.",
			Placeholder:          "if health < 10 then...",
			EstimatedMinutes:     15,
			Points:               15,
		},
	}}
}

func medicalPath() LearningPath {
	return LearningPath{Kind: PathMedical, Steps: []LearningStep{
		{
			ID:        "med_welcome",
			Title:     "Technology in Medicine",
			Emoji:     "🏥",
			BlockType: "Introduction to MedTech Concepts",
			IntroductionPrompt: `You are an expert in medical technology, welcoming a fellow medical professional to a course on core tech concepts.
Your goal is to bridge the gap between medicine and technology, emphasizing why this knowledge is crucial in modern healthcare.
1. Acknowledge their background: their clinical expertise is the perfect foundation for understanding these concepts.
2. Introduce the "Why": technology is deeply integrated into medicine, from EHRs to diagnostic imaging. Understanding the principles behind these tools improves how they are used and how clinicians talk with IT staff.
3. Explain the analogy-based approach: this course uses medical analogies to make technical topics intuitive, for example a computer's CPU is like the 'heart' of the system.
4. End with encouragement: the goal is conceptual understanding, not becoming a coder. Close with something like, "Let's begin our first consultation."`,
			ChallengeDescription: "To begin, what is one piece of technology you use in your daily practice that you'd like to understand better? (e.g., EHR, PACs, Telehealth platform).",
			EvaluationPreamble:   "The user, a medical professional, has shared a piece of technology they use. Acknowledge their input warmly and express excitement for the journey. Say something like: 'Excellent. That's a perfect example of the systems we'll be demystifying. Let's pull up the first chart.'",
			Placeholder:          "e.g., Our hospital's EHR system",
			EstimatedMinutes:     5,
			Points:               5,
		},
		{
			ID:                   "med_cpu_ram",
			Title:                "System Anatomy",
			Emoji:                "🫀",
			BlockType:            "CPU & RAM",
			IntroductionPrompt:   "Explain the concepts of 'CPU' and 'RAM' using their medical analogies from the map. Describe the CPU as the 'heart' and RAM as the 'short-term memory'. Contrast RAM with a Hard Drive ('long-term memory').",
			ChallengeDescription: "Based on the analogies, if a hospital's computer is slow while actively looking up multiple patient records for a complex case, which component is the likely bottleneck: the 'heart' (CPU) or the 'short-term memory' (RAM)? Explain why.",
			EvaluationPreamble:   "The user is diagnosing a slow system. The correct answer is RAM ('short-term memory') because it's responsible for holding active information. Evaluate their reasoning.",
			Placeholder:          "The bottleneck is likely the... because...",
			EstimatedMinutes:     10,
			Points:               10,
		},
		{
			ID:                   "med_api",
			Title:                "System Communication",
			Emoji:                "🧠",
			BlockType:            "API",
			IntroductionPrompt:   "Explain the concept of an 'API' using its analogy. Describe it as the 'nervous system for applications,' allowing different systems (like the EHR and the pharmacy's inventory system) to communicate.",
			ChallengeDescription: "A doctor orders a prescription from the EHR. The system immediately confirms if the medication is in stock at the pharmacy. Describe the role of the 'API' in this interaction. What 'message' does the EHR send?",
			EvaluationPreamble:   "The user is explaining the role of an API. They should describe a 'request' from the EHR (e.g., 'Do you have Medication X?') and a 'response' from the pharmacy system via the API (e.g., 'Yes, 50 units available').",
			Placeholder:          "The EHR sends a request to...",
			EstimatedMinutes:     10,
			Points:               10,
		},
	}}
}

func swePath() LearningPath {
	return LearningPath{Kind: PathSWE, Steps: []LearningStep{
		{
			ID:        "swe_welcome",
			Title:     "How Software is Built",
			Emoji:     "🏗️",
			BlockType: "Intro to SWE Concepts",
			IntroductionPrompt: `You are a helpful and clear guide for an intelligent adult who is new to software concepts.
1. Welcome them and explain that understanding software architecture is like understanding the blueprint of a building, even if you don't lay the bricks yourself.
2. Explain this track focuses on the "what" and "why" of technology, not the "how" of coding syntax.
3. State that you'll use real-world analogies (like city planning or running a business) to make concepts clear.
4. End with an encouraging start: "Let's get started by looking at the foundational blueprint of any computer system."`,
			ChallengeDescription: "To start, think about your favorite app or website. What do you think are the main 'parts' that make it work? (e.g., user login, showing pictures, etc.). There's no wrong answer!",
			EvaluationPreamble:   "The user has shared their thoughts on how an app works. Acknowledge their intuition and tell them it's a great starting point for thinking about architecture. Say something like 'That's a perfect way to start thinking about components. Now, let's look at the official blueprints.'",
			Placeholder:          "I think Instagram's main parts are...",
			EstimatedMinutes:     5,
			Points:               5,
		},
		{
			ID:                   "swe_cpu_ram",
			Title:                "System Architecture",
			Emoji:                "🏭",
			BlockType:            "CPU & RAM",
			IntroductionPrompt:   "Explain 'CPU' and 'RAM'. Use their general analogies from the map. Describe the CPU as the 'power plant' for the city, and RAM as the 'workbench' for current jobs. Contrast RAM with a Hard Drive ('the library').",
			ChallengeDescription: "If a graphic designer's computer slows down when they have many large design files open at once, which component is the likely bottleneck: the 'power plant' (CPU) or the 'workbench' (RAM)? Explain your reasoning.",
			EvaluationPreamble:   "The user is diagnosing a slow computer. The correct answer is RAM ('workbench') because it holds all the actively used files. Evaluate their reasoning.",
			Placeholder:          "The bottleneck is probably the... because...",
			EstimatedMinutes:     10,
			Points:               10,
		},
		{
			ID:                   "swe_api",
			Title:                "How Systems Talk",
			Emoji:                "📋",
			BlockType:            "API",
			IntroductionPrompt:   "Explain 'API'. Use the 'restaurant menu' analogy. You, the customer, don't need to know the kitchen's secrets; you just need the menu (the API) to make a request. The waiter handles the rest. This is how different software components interact without exposing their internal complexity.",
			ChallengeDescription: "When you use a weather app on your phone, it shows you data from a national weather service. How does the 'restaurant menu' (API) analogy apply here? What 'order' is your app placing?",
			EvaluationPreamble:   "The user should apply the API analogy. The phone app (customer) uses the weather service's API (menu) to place an order ('What's the weather for New York?'). The service returns the data. Evaluate their explanation.",
			Placeholder:          "The app places an 'order' for...",
			EstimatedMinutes:     10,
			Points:               10,
		},
	}}
}
